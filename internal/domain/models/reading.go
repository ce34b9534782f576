// internal/domain/models/reading.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sensor collections created by the devices bootstrap.
const (
	CollectionTempSensor     = "temp_sensor"
	CollectionHumiditySensor = "humidity_sensor"
	CollectionLights         = "lights"
)

// Reading is a single sensor sample. The sensor kind is implied by the
// collection the document lives in (temp_sensor or humidity_sensor).
type Reading struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Value float64            `bson:"value" json:"value"`

	// RecordedAt is absent on documents written by older tools.
	RecordedAt *time.Time `bson:"recorded_at,omitempty" json:"recorded_at,omitempty"`
}
