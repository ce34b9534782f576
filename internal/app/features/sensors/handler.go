// internal/app/features/sensors/handler.go
package sensors

import (
	readingstore "github.com/dalemusser/devicehub/internal/app/store/readings"
	"github.com/dalemusser/devicehub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Reading keys accepted by POST /sensors/iot and GET /sensors/read/{key}.
const (
	KeyTemperature = "temp"
	KeyHumidity    = "humidity"
)

// Handler serves the sensor ingest and read endpoints.
type Handler struct {
	Temperature *readingstore.Store
	Humidity    *readingstore.Store
	APIKey      string
	Log         *zap.Logger

	// Limiter throttles ingest per client IP. Nil disables throttling.
	Limiter *ratelimit.Limiter
}

// NewHandler constructs a sensors Handler over the devices database.
// An empty apiKey rejects every ingest request.
func NewHandler(db *mongo.Database, apiKey string, logger *zap.Logger) *Handler {
	return &Handler{
		Temperature: readingstore.NewTemperature(db),
		Humidity:    readingstore.NewHumidity(db),
		APIKey:      apiKey,
		Log:         logger,
	}
}

func (h *Handler) store(key string) (*readingstore.Store, bool) {
	switch key {
	case KeyTemperature:
		return h.Temperature, true
	case KeyHumidity:
		return h.Humidity, true
	}
	return nil, false
}
