package bootstrap

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/devicehub/internal/domain/models"
	"github.com/dalemusser/devicehub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "devices",
		MongoMaxPoolSize: 100,
		MongoMinPoolSize: 10,
		SensorsAPIKey:    "k",
		LightsAPIKey:     "lk",

		ReadingsPruneInterval: time.Hour,
	}
}

func TestValidateConfig(t *testing.T) {
	dev := &config.CoreConfig{Env: "dev"}
	prod := &config.CoreConfig{Env: "prod"}

	tests := []struct {
		name    string
		core    *config.CoreConfig
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", dev, func(*AppConfig) {}, false},
		{"bad uri", dev, func(c *AppConfig) { c.MongoURI = "http://nope" }, true},
		{"empty database", dev, func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"min over max pool", dev, func(c *AppConfig) { c.MongoMinPoolSize = 200 }, true},
		{"empty key in dev", dev, func(c *AppConfig) { c.SensorsAPIKey = "" }, false},
		{"empty key in prod", prod, func(c *AppConfig) { c.SensorsAPIKey = "" }, true},
		{"key in prod", prod, func(*AppConfig) {}, false},
		{"empty lights key in dev", dev, func(c *AppConfig) { c.LightsAPIKey = "" }, false},
		{"empty lights key in prod", prod, func(c *AppConfig) { c.LightsAPIKey = "" }, true},
		{"trusted proxies", dev, func(c *AppConfig) { c.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.1"} }, false},
		{"bad trusted proxy", dev, func(c *AppConfig) { c.TrustedProxies = []string{"proxy.lan"} }, true},
		{"negative rate limit", dev, func(c *AppConfig) { c.SensorsRateLimit = -1 }, true},
		{"negative retention", dev, func(c *AppConfig) { c.ReadingsRetention = -time.Hour }, true},
		{"retention without interval", dev, func(c *AppConfig) {
			c.ReadingsRetention = 24 * time.Hour
			c.ReadingsPruneInterval = 0
		}, true},
		{"retention with interval", dev, func(c *AppConfig) { c.ReadingsRetention = 24 * time.Hour }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validAppConfig()
			tc.mutate(&cfg)
			err := ValidateConfig(tc.core, cfg, testLogger())
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfig_ProdMissingKeySentinel(t *testing.T) {
	cfg := validAppConfig()
	cfg.SensorsAPIKey = ""
	err := ValidateConfig(&config.CoreConfig{Env: "prod"}, cfg, testLogger())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestValidateConfig_ProdMissingLightsKeySentinel(t *testing.T) {
	cfg := validAppConfig()
	cfg.LightsAPIKey = ""
	err := ValidateConfig(&config.CoreConfig{Env: "prod"}, cfg, testLogger())
	if !errors.Is(err, ErrMissingLightsAPIKey) {
		t.Errorf("expected ErrMissingLightsAPIKey, got %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" 10.0.0.1, ,192.0.2.0/24,")
	if len(got) != 2 || got[0] != "10.0.0.1" || got[1] != "192.0.2.0/24" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestValidateConfig_WarnsOnEmptyKeyInDev(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := validAppConfig()
	cfg.SensorsAPIKey = ""

	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, zap.New(core)); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, nil, validAppConfig(), deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames: %v", err)
	}
	want := map[string]bool{
		models.CollectionTempSensor:     false,
		models.CollectionHumiditySensor: false,
		models.CollectionLights:         false,
	}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("collection %s not created", n)
		}
	}
}

func TestStartup_LogsInventory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateLight(ctx, "Lamp", "10.0.0.2", true)

	core, logs := observer.New(zap.InfoLevel)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	if err := Startup(ctx, nil, validAppConfig(), deps, zap.New(core)); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	if logs.FilterMessage("sensor collection").Len() != 2 {
		t.Errorf("expected a log line per sensor collection")
	}
	lights := logs.FilterMessage("lights registered").All()
	if len(lights) != 1 || lights[0].ContextMap()["count"] != int64(1) {
		t.Errorf("unexpected lights log: %+v", lights)
	}
}

func TestStartupShutdown_RetentionWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := validAppConfig()
	cfg.ReadingsRetention = 24 * time.Hour
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	if err := Startup(ctx, nil, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if retentionWorker == nil {
		t.Fatal("expected retention worker to be started")
	}

	// Shutdown with a nil client so the shared test client stays connected.
	if err := Shutdown(ctx, nil, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if retentionWorker != nil {
		t.Error("expected retention worker to be stopped")
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	cfg := validAppConfig()
	cfg.SensorsRateLimit = 100
	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	t.Cleanup(stopBackground)

	tests := []struct {
		method, path string
		status       int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/sensors/read", http.StatusOK},
		{"GET", "/sensors/read/nope", http.StatusBadRequest},
		{"GET", "/sensors/history/temp", http.StatusOK},
		{"POST", "/sensors/iot", http.StatusBadRequest},
		{"GET", "/lights", http.StatusOK},
		{"POST", "/lights", http.StatusUnauthorized},
		{"DELETE", "/lights/000000000000000000000000", http.StatusUnauthorized},
		{"GET", "/missing", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			if rec.Code != tc.status {
				t.Errorf("got %d, want %d (body: %s)", rec.Code, tc.status, rec.Body.String())
			}
		})
	}
}

func TestBuildHandler_LightsWriteWithKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, validAppConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	t.Cleanup(stopBackground)

	req := httptest.NewRequest("POST", "/lights", strings.NewReader(`{"ip":"10.0.0.40","name":"Desk"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API_KEY", "lk")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("got %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestBuildHandler_RejectsBadTrustedProxies(t *testing.T) {
	cfg := validAppConfig()
	cfg.SensorsRateLimit = 10
	cfg.TrustedProxies = []string{"not-a-cidr/99"}
	if _, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, DBDeps{}, testLogger()); err == nil {
		stopBackground()
		t.Fatal("expected error for bad trusted_proxies")
	}
}
