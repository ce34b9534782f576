// internal/app/features/lights/auth.go
package lights

import (
	"crypto/subtle"
	"net/http"

	"github.com/dalemusser/devicehub/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// APIKeyHeader carries the lights write key.
const APIKeyHeader = "API_KEY"

// requireAPIKey rejects requests whose API_KEY header does not match the
// configured key. An empty configured key locks the routes.
func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(APIKeyHeader)
		if got == "" {
			jsonutil.Error(w, h.Log, http.StatusUnauthorized, "Missing API key", nil)
			return
		}
		if h.APIKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.APIKey)) != 1 {
			h.Log.Warn("lights write rejected",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr))
			jsonutil.Error(w, h.Log, http.StatusUnauthorized, "Invalid API key", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
