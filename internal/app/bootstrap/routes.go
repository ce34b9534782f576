// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/devicehub/internal/app/features/health"
	lightsfeature "github.com/dalemusser/devicehub/internal/app/features/lights"
	sensorsfeature "github.com/dalemusser/devicehub/internal/app/features/sensors"
	"github.com/dalemusser/devicehub/internal/app/system/jsonutil"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for devicehub.
//
// WAFFLE calls this after configuration, DB connection, schema setup, and
// Startup have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	limiter, err := newIngestLimiter(appCfg)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonutil.Error(w, nil, http.StatusNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonutil.Error(w, nil, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.MongoDatabase.Name(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Sensor ingest and latest readings
	sensorsHandler := sensorsfeature.NewHandler(deps.MongoDatabase, appCfg.SensorsAPIKey, logger)
	sensorsHandler.Limiter = limiter
	r.Mount("/sensors", sensorsfeature.Routes(sensorsHandler))

	// Lights registry; writes need the lights API key
	lightsHandler := lightsfeature.NewHandler(deps.MongoDatabase, appCfg.LightsAPIKey, logger)
	r.Mount("/lights", lightsfeature.Routes(lightsHandler))

	return r, nil
}
