// internal/app/bootstrap/background.go
package bootstrap

import (
	"time"

	readingstore "github.com/dalemusser/devicehub/internal/app/store/readings"
	"github.com/dalemusser/devicehub/internal/app/system/ratelimit"
	"github.com/dalemusser/devicehub/internal/app/system/workers"
	"go.uber.org/zap"
)

// Long-lived helpers started by the lifecycle hooks and stopped in Shutdown.
// WAFFLE passes DBDeps by value, so they are held here.
var (
	retentionWorker *workers.ReadingsRetention
	ingestLimiter   *ratelimit.Limiter
)

func startRetention(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	if appCfg.ReadingsRetention <= 0 {
		logger.Info("readings retention disabled")
		return
	}
	retentionWorker = workers.NewReadingsRetention(
		[]*readingstore.Store{
			readingstore.NewTemperature(deps.MongoDatabase),
			readingstore.NewHumidity(deps.MongoDatabase),
		},
		logger,
		appCfg.ReadingsPruneInterval,
		appCfg.ReadingsRetention,
	)
	retentionWorker.Start()
}

// newIngestLimiter returns nil when rate limiting is disabled. The proxy list
// was checked by ValidateConfig.
func newIngestLimiter(appCfg AppConfig) (*ratelimit.Limiter, error) {
	if appCfg.SensorsRateLimit <= 0 {
		return nil, nil
	}
	trusted, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	ingestLimiter = ratelimit.New(appCfg.SensorsRateLimit, time.Minute).TrustProxies(trusted)
	return ingestLimiter, nil
}

func stopBackground() {
	if retentionWorker != nil {
		retentionWorker.Stop()
		retentionWorker = nil
	}
	if ingestLimiter != nil {
		ingestLimiter.Stop()
		ingestLimiter = nil
	}
}
