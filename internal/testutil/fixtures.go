package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/devicehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateLight inserts a light with the given name and IP.
func (f *Fixtures) CreateLight(ctx context.Context, name, ip string, isDefault bool) models.Light {
	f.t.Helper()

	now := time.Now().UTC()
	light := models.Light{
		ID:         primitive.NewObjectID(),
		IP:         ip,
		Name:       name,
		NameCI:     text.Fold(name),
		IsDefault:  isDefault,
		Color:      "#ffffff",
		Brightness: 100,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection(models.CollectionLights).InsertOne(ctx, light); err != nil {
		f.t.Fatalf("failed to create test light: %v", err)
	}
	return light
}

// CreateReading inserts a reading into the given sensor collection, recorded at the given time.
func (f *Fixtures) CreateReading(ctx context.Context, collection string, value float64, at time.Time) models.Reading {
	f.t.Helper()

	at = at.UTC()
	reading := models.Reading{
		ID:         primitive.NewObjectID(),
		Value:      value,
		RecordedAt: &at,
	}

	if _, err := f.db.Collection(collection).InsertOne(ctx, reading); err != nil {
		f.t.Fatalf("failed to create test reading: %v", err)
	}
	return reading
}
