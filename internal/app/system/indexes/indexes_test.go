package indexes_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dalemusser/devicehub/internal/app/system/indexes"
	"github.com/dalemusser/devicehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, ctx context.Context, coll *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"temp_sensor":     {"idx_temp_sensor_recorded_at"},
		"humidity_sensor": {"idx_humidity_sensor_recorded_at"},
		"lights":          {"uniq_lights_ip", "idx_lights_nameci__id", "idx_lights_is_default"},
	}
	for coll, want := range expected {
		names := indexNames(t, ctx, db.Collection(coll))
		for _, name := range want {
			if !names[name] {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("temp_sensor").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "recorded_at", Value: -1}},
		Options: options.Index().SetName("legacy_recorded"),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, ctx, db.Collection("temp_sensor"))
	if names["legacy_recorded"] {
		t.Error("legacy index should have been replaced")
	}
	if !names["idx_temp_sensor_recorded_at"] {
		t.Error("expected idx_temp_sensor_recorded_at")
	}
}

func TestEnsureAll_ReportsDuplicateIPs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("lights").InsertMany(ctx, []any{
		bson.M{"ip": "10.0.0.5", "name": "a"},
		bson.M{"ip": "10.0.0.5", "name": "b"},
	})
	if err != nil {
		t.Fatalf("seed lights: %v", err)
	}

	err = indexes.EnsureAll(ctx, db)
	if err == nil {
		t.Fatal("expected EnsureAll to fail with duplicate IPs")
	}
	if !strings.Contains(err.Error(), "uniq_lights_ip") {
		t.Errorf("error should name the unique index, got %v", err)
	}
}
