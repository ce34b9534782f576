// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/devicehub/internal/app/system/provision"
	"github.com/dalemusser/devicehub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvPrefix namespaces app env vars: DEVICES_MONGO_URI, DEVICES_SENSORS_API_KEY, ...
const EnvPrefix = "DEVICES"

// appConfigKeys defines the configuration keys for devicehub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, sensors_api_key, etc.
//   - Environment variables: DEVICES_MONGO_URI, DEVICES_SENSORS_API_KEY, etc.
//   - Command-line flags: --mongo_uri, --sensors_api_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: provision.DefaultDatabase, Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "sensors_api_key", Default: "", Desc: "Shared API key sensors send with readings (required in prod)"},
	{Name: "sensors_rate_limit", Default: 120, Desc: "Sensor ingest requests per minute per client IP (0 disables)"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs/CIDRs whose X-Forwarded-For is honoured by the rate limiter"},
	{Name: "lights_api_key", Default: "", Desc: "API key clients send as the API_KEY header on light writes (required in prod)"},

	// Readings retention
	{Name: "readings_retention", Default: "0s", Desc: "Delete readings older than this (e.g., 720h); 0 keeps them forever"},
	{Name: "readings_prune_interval", Default: "1h", Desc: "How often expired readings are pruned"},
}

var (
	// ErrMissingAPIKey is returned by ValidateConfig in prod when no sensors key is set.
	ErrMissingAPIKey = errors.New("sensors_api_key is required in prod")
	// ErrMissingLightsAPIKey is returned by ValidateConfig in prod when no lights key is set.
	ErrMissingLightsAPIKey = errors.New("lights_api_key is required in prod")
)

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SensorsAPIKey:    appValues.String("sensors_api_key"),
		SensorsRateLimit: appValues.Int("sensors_rate_limit"),
		TrustedProxies:   splitList(appValues.String("trusted_proxies")),
		LightsAPIKey:     appValues.String("lights_api_key"),

		ReadingsRetention:     appValues.Duration("readings_retention", 0),
		ReadingsPruneInterval: appValues.Duration("readings_prune_interval", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before any connection attempt. Outside prod an
// empty sensors or lights key is allowed; the guarded routes then reject
// every request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database must not be empty")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	if appCfg.SensorsRateLimit < 0 {
		return fmt.Errorf("sensors_rate_limit must not be negative (got %d)", appCfg.SensorsRateLimit)
	}
	if _, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}
	if appCfg.ReadingsRetention < 0 {
		return fmt.Errorf("readings_retention must not be negative (got %s)", appCfg.ReadingsRetention)
	}
	if appCfg.ReadingsRetention > 0 && appCfg.ReadingsPruneInterval <= 0 {
		return errors.New("readings_prune_interval must be positive when readings_retention is set")
	}

	if appCfg.SensorsAPIKey == "" {
		if coreCfg != nil && coreCfg.Env == "prod" {
			return ErrMissingAPIKey
		}
		logger.Warn("sensors_api_key is empty; POST /sensors/iot will reject all requests")
	}
	if appCfg.LightsAPIKey == "" {
		if coreCfg != nil && coreCfg.Env == "prod" {
			return ErrMissingLightsAPIKey
		}
		logger.Warn("lights_api_key is empty; light writes will reject all requests")
	}

	return nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
