// internal/app/store/readings/readingstore.go
package readingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/devicehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoReading is returned by Last when the sensor collection is empty.
var ErrNoReading = errors.New("no reading recorded")

// Store provides access to one sensor collection.
type Store struct {
	c *mongo.Collection
}

// New creates a store over the named sensor collection.
func New(db *mongo.Database, collection string) *Store {
	return &Store{c: db.Collection(collection)}
}

// NewTemperature returns the store for temp_sensor.
func NewTemperature(db *mongo.Database) *Store {
	return New(db, models.CollectionTempSensor)
}

// NewHumidity returns the store for humidity_sensor.
func NewHumidity(db *mongo.Database) *Store {
	return New(db, models.CollectionHumiditySensor)
}

// Collection returns the collection name this store writes to.
func (s *Store) Collection() string {
	return s.c.Name()
}

// Save records a new reading stamped with the current time.
func (s *Store) Save(ctx context.Context, value float64) (models.Reading, error) {
	now := time.Now().UTC()
	r := models.Reading{
		ID:         primitive.NewObjectID(),
		Value:      value,
		RecordedAt: &now,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Reading{}, err
	}
	return r, nil
}

// latestSort orders newest first. Documents without recorded_at sort after
// stamped ones and fall back to _id (insertion) order.
var latestSort = bson.D{{Key: "recorded_at", Value: -1}, {Key: "_id", Value: -1}}

// Last returns the most recent reading, or ErrNoReading.
func (s *Store) Last(ctx context.Context) (models.Reading, error) {
	var r models.Reading
	err := s.c.FindOne(ctx, bson.M{}, options.FindOne().SetSort(latestSort)).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Reading{}, ErrNoReading
	}
	if err != nil {
		return models.Reading{}, err
	}
	return r, nil
}

// Recent returns up to limit readings, newest first.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.Reading, error) {
	if limit <= 0 {
		limit = 1
	}
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(latestSort).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Reading
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of readings stored.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// History returns up to limit readings older than before (by _id), newest
// first. A zero before starts from the newest reading.
func (s *Store) History(ctx context.Context, before primitive.ObjectID, limit int64) ([]models.Reading, error) {
	filter := bson.M{}
	if !before.IsZero() {
		filter["_id"] = bson.M{"$lt": before}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Reading{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBefore removes readings recorded before cutoff. Readings without a
// recorded_at are left alone.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"recorded_at": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
