// internal/app/features/lights/list.go
package lights

import (
	"fmt"
	"net/http"
	"strconv"

	lightstore "github.com/dalemusser/devicehub/internal/app/store/lights"
	"github.com/dalemusser/devicehub/internal/app/system/jsonutil"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
)

// ServeList handles GET /lights. Optional query filters: ip, name, is_default.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := lightstore.Filter{
		IP:   q.Get("ip"),
		Name: q.Get("name"),
	}
	if raw := q.Get("is_default"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			jsonutil.Error(w, h.Log, http.StatusBadRequest, fmt.Sprintf("Invalid is_default: '%s'", raw), nil)
			return
		}
		f.IsDefault = &b
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "lights list")
	defer cancel()

	lights, err := h.Store.List(ctx, f)
	if err != nil {
		h.storeError(w, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, lights)
}

// ServeView handles GET /lights/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.lightID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "lights view")
	defer cancel()

	l, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	jsonutil.Write(w, http.StatusOK, l)
}
