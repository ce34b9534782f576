// internal/app/features/sensors/ingest.go
package sensors

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"github.com/dalemusser/devicehub/internal/app/system/jsonutil"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const maxIngestBody = 64 << 10

// msgHumidityRange is the 400 message for humidity outside 0..1.
const msgHumidityRange = "Humidity must be expressed as a percentage i.e. 0 <= x <= 1"

type ingestRequest struct {
	APIKey   string   `json:"API_KEY"`
	Temp     *float64 `json:"temp"`
	Humidity *float64 `json:"humidity"`
}

// HandleIngest handles POST /sensors/iot.
//
// The body carries the device API key and at least one of temp or humidity.
// Each reading present is stored in its own collection.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxIngestBody))
	if err := dec.Decode(&req); err != nil {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, "Invalid request", err)
		return
	}

	if !h.validKey(req.APIKey) {
		jsonutil.Error(w, h.Log, http.StatusUnauthorized, "Invalid API key", nil)
		return
	}
	if req.Temp == nil && req.Humidity == nil {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, "Invalid request", nil)
		return
	}
	// Humidity is a fraction; nothing is stored when it is out of range.
	if req.Humidity != nil && (*req.Humidity < 0 || *req.Humidity > 1) {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, msgHumidityRange, nil)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "sensors ingest")
	defer cancel()

	if req.Temp != nil {
		if _, err := h.Temperature.Save(ctx, *req.Temp); err != nil {
			jsonutil.Error(w, h.Log, http.StatusInternalServerError, "save temperature", err)
			return
		}
	}
	if req.Humidity != nil {
		if _, err := h.Humidity.Save(ctx, *req.Humidity); err != nil {
			jsonutil.Error(w, h.Log, http.StatusInternalServerError, "save humidity", err)
			return
		}
	}

	h.Log.Debug("sensor readings stored",
		zap.Bool("temp", req.Temp != nil),
		zap.Bool("humidity", req.Humidity != nil))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) validKey(got string) bool {
	if h.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.APIKey)) == 1
}
