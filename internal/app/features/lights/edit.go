// internal/app/features/lights/edit.go
package lights

import (
	"net/http"

	"github.com/dalemusser/devicehub/internal/app/system/jsonutil"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
	"github.com/dalemusser/devicehub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /lights. Body: {"ip": "...", "name": "...", "is_default": false,
// "color": "#rrggbb", "brightness": 1..100, "on": false}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.LightPatch
	if err := decodeStrict(r, &in); err != nil {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, "Invalid request", err)
		return
	}

	l := models.Light{}
	if in.IP != nil {
		l.IP = *in.IP
	}
	if in.Name != nil {
		l.Name = *in.Name
	}
	if in.IsDefault != nil {
		l.IsDefault = *in.IsDefault
	}
	if in.Color != nil {
		l.Color = *in.Color
	}
	if in.Brightness != nil {
		if *in.Brightness == 0 {
			jsonutil.Error(w, h.Log, http.StatusBadRequest, "invalid light: brightness must be between 1 and 100", nil)
			return
		}
		l.Brightness = *in.Brightness
	}
	if in.On != nil {
		l.On = *in.On
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "lights create")
	defer cancel()

	created, err := h.Store.Create(ctx, l)
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.Log.Info("light created",
		zap.String("light_id", created.ID.Hex()),
		zap.String("ip", created.IP))
	jsonutil.Write(w, http.StatusCreated, created)
}

// HandleUpdate handles PUT /lights/{id}. Fields left out of the body are unchanged.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.lightID(w, r)
	if !ok {
		return
	}
	var patch models.LightPatch
	if err := decodeStrict(r, &patch); err != nil {
		jsonutil.Error(w, h.Log, http.StatusBadRequest, "Invalid request", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "lights update")
	defer cancel()

	updated, err := h.Store.Update(ctx, id, patch)
	if err != nil {
		h.storeError(w, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /lights/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.lightID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "lights delete")
	defer cancel()

	n, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	if n == 0 {
		jsonutil.Error(w, h.Log, http.StatusNotFound, "Light not found", nil)
		return
	}
	h.Log.Info("light deleted", zap.String("light_id", id.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
