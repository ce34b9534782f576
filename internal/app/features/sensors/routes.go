// internal/app/features/sensors/routes.go
package sensors

import (
	"github.com/dalemusser/devicehub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the sensor endpoints (typically under "/sensors").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(ir chi.Router) {
		if h.Limiter != nil {
			ir.Use(ratelimit.Middleware(h.Limiter, h.Log))
		}
		ir.Post("/iot", h.HandleIngest)
	})

	r.Get("/read", h.ServeReadAll)
	r.Get("/read/{key}", h.ServeReadKey)
	r.Get("/history/{key}", h.ServeHistory)
	return r
}
