// internal/app/features/sensors/read.go
package sensors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	readingstore "github.com/dalemusser/devicehub/internal/app/store/readings"
	"github.com/dalemusser/devicehub/internal/app/system/jsonutil"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeReadAll handles GET /sensors/read. Keys with no reading yet are null.
//
//	{ "temp": 21.5, "humidity": null }
func (h *Handler) ServeReadAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "sensors read")
	defer cancel()

	out := make(map[string]*float64, 2)
	for _, key := range []string{KeyTemperature, KeyHumidity} {
		s, _ := h.store(key)
		v, err := latest(ctx, s)
		if err != nil {
			jsonutil.Error(w, h.Log, http.StatusInternalServerError, "read "+key, err)
			return
		}
		out[key] = v
	}
	jsonutil.Write(w, http.StatusOK, out)
}

// ServeReadKey handles GET /sensors/read/{key}.
func (h *Handler) ServeReadKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s, ok := h.store(key)
	if !ok {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, fmt.Sprintf("Invalid key: '%s'", key), nil)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "sensors read")
	defer cancel()

	v, err := latest(ctx, s)
	if err != nil {
		jsonutil.Error(w, h.Log, http.StatusInternalServerError, "read "+key, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, map[string]*float64{key: v})
}

func latest(ctx context.Context, s *readingstore.Store) (*float64, error) {
	r, err := s.Last(ctx)
	if errors.Is(err, readingstore.ErrNoReading) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r.Value, nil
}
