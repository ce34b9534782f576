// internal/app/features/lights/handler.go
package lights

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	lightstore "github.com/dalemusser/devicehub/internal/app/store/lights"
	"github.com/dalemusser/devicehub/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxBody = 16 << 10

// Handler is the feature-level entry point for the lights registry.
// APIKey guards the write routes; reads are open.
type Handler struct {
	Store  *lightstore.Store
	APIKey string
	Log    *zap.Logger
}

// NewHandler constructs a lights Handler bound to a DB, write key and logger.
func NewHandler(db *mongo.Database, apiKey string, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  lightstore.New(db),
		APIKey: apiKey,
		Log:    logger,
	}
}

// lightID parses the {id} URL parameter, writing a 400 when it is malformed.
func (h *Handler) lightID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, fmt.Sprintf("Invalid light id: '%s'", raw), nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

// decodeStrict rejects unknown fields and trailing data so a typo in a
// field name is not silently ignored.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// storeError maps store errors onto API statuses.
func (h *Handler) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lightstore.ErrNotFound):
		jsonutil.Error(w, h.Log, http.StatusNotFound, "Light not found", err)
	case errors.Is(err, lightstore.ErrDuplicateLight):
		jsonutil.Error(w, h.Log, http.StatusConflict, "A light with this ip already exists", err)
	case errors.Is(err, lightstore.ErrInvalidLight):
		jsonutil.Error(w, h.Log, http.StatusBadRequest, err.Error(), err)
	default:
		jsonutil.Error(w, h.Log, http.StatusInternalServerError, "lights store", err)
	}
}
