// internal/domain/models/light.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Light is a network-addressable smart bulb registered in the lights collection.
type Light struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IP        string             `bson:"ip" json:"ip"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"` // ← always stored
	IsDefault bool               `bson:"is_default" json:"is_default"`

	// Requested bulb state. Color is lowercase "#rrggbb"; Brightness is 1..100.
	Color      string `bson:"color" json:"color"`
	Brightness int    `bson:"brightness" json:"brightness"`
	On         bool   `bson:"on" json:"on"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// LightPatch carries the mutable fields of a light. Nil fields are left untouched.
type LightPatch struct {
	IP        *string `json:"ip,omitempty"`
	Name      *string `json:"name,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`

	Color      *string `json:"color,omitempty"`
	Brightness *int    `json:"brightness,omitempty"`
	On         *bool   `json:"on,omitempty"`
}
