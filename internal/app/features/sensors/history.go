// internal/app/features/sensors/history.go
package sensors

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/devicehub/internal/app/system/jsonutil"
	"github.com/dalemusser/devicehub/internal/app/system/paging"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
	"github.com/dalemusser/devicehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type historyResponse struct {
	Key      string           `json:"key"`
	Readings []models.Reading `json:"readings"`
	Next     string           `json:"next,omitempty"`
}

// ServeHistory handles GET /sensors/history/{key}?limit=&before=.
// Readings are newest first; pass "next" back as "before" for the older page.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s, ok := h.store(key)
	if !ok {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, fmt.Sprintf("Invalid key: '%s'", key), nil)
		return
	}
	before, err := paging.ParseBefore(r)
	if err != nil {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, "Invalid cursor", err)
		return
	}
	limit := paging.ParseLimit(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "sensors history")
	defer cancel()

	rows, err := s.History(ctx, before, paging.LimitPlusOne(limit))
	if err != nil {
		jsonutil.Error(w, h.Log, http.StatusInternalServerError, "history "+key, err)
		return
	}
	hasNext := paging.TrimPage(&rows, limit)

	jsonutil.Write(w, http.StatusOK, historyResponse{
		Key:      key,
		Readings: rows,
		Next: paging.NextCursor(rows, hasNext, func(r models.Reading) primitive.ObjectID {
			return r.ID
		}),
	})
}
