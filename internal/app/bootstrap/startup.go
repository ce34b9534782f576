// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	lightstore "github.com/dalemusser/devicehub/internal/app/store/lights"
	readingstore "github.com/dalemusser/devicehub/internal/app/store/readings"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after schema setup and before the handler is built. It
// applies timeout overrides from the environment, logs the state of the
// devices collections, and starts the retention worker when configured.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from env",
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium))
	}
	if err := logInventory(ctx, deps, logger); err != nil {
		return err
	}
	startRetention(appCfg, deps, logger)
	return nil
}

func logInventory(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	for _, s := range []*readingstore.Store{
		readingstore.NewTemperature(deps.MongoDatabase),
		readingstore.NewHumidity(deps.MongoDatabase),
	} {
		n, err := s.Count(ctx)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("collection", s.Collection()), zap.Int64("readings", n)}
		if last, err := s.Last(ctx); err == nil && last.RecordedAt != nil {
			fields = append(fields, zap.Time("last_recorded_at", *last.RecordedAt))
		} else if err != nil && !errors.Is(err, readingstore.ErrNoReading) {
			return err
		}
		logger.Info("sensor collection", fields...)
	}

	lights, err := lightstore.New(deps.MongoDatabase).List(ctx, lightstore.Filter{})
	if err != nil {
		return err
	}
	logger.Info("lights registered", zap.Int("count", len(lights)))
	return nil
}
