// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for the devicehub WAFFLE app.
//
// Values come from environment variables (DEVICES_*), configuration files,
// or command-line flags, loaded in LoadConfig. WAFFLE's CoreConfig covers
// the framework settings (ports, TLS, logging level, env).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://admin:pw@localhost:27017/devices)
	MongoDatabase    string // Database name within MongoDB (default: devices)
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// SensorsAPIKey is the shared secret devices send as API_KEY on ingest.
	SensorsAPIKey string
	// SensorsRateLimit is ingest requests per minute per client IP; 0 disables.
	SensorsRateLimit int
	// TrustedProxies lists proxy IPs/CIDRs allowed to set X-Forwarded-For.
	// Empty means the rate limiter keys on the TCP peer only.
	TrustedProxies []string

	// LightsAPIKey guards POST/PUT/DELETE on /lights via the API_KEY header.
	LightsAPIKey string

	// Readings older than ReadingsRetention are pruned every
	// ReadingsPruneInterval. Zero retention keeps readings forever.
	ReadingsRetention     time.Duration
	ReadingsPruneInterval time.Duration
}
