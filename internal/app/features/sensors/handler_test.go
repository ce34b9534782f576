package sensors_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/devicehub/internal/app/features/sensors"
	"github.com/dalemusser/devicehub/internal/app/system/ratelimit"
	"github.com/dalemusser/devicehub/internal/domain/models"
	"github.com/dalemusser/devicehub/internal/testutil"
	"go.uber.org/zap"
)

const testKey = "sensor-secret"

const humidityMsg = "Humidity must be expressed as a percentage i.e. 0 <= x <= 1"

func newHandler(t *testing.T) (*sensors.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return sensors.NewHandler(db, testKey, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestIngest_StoresReadings(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewJSONRequest(t, "POST", "/sensors/iot", map[string]any{
		"API_KEY":  testKey,
		"temp":     21.5,
		"humidity": 0.4,
	})
	rec := testutil.NewRecorder()
	h.HandleIngest(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "OK")

	for _, coll := range []string{models.CollectionTempSensor, models.CollectionHumiditySensor} {
		n, err := fx.DB().Collection(coll).CountDocuments(ctx, map[string]any{})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 1 {
			t.Errorf("%s: got %d documents, want 1", coll, n)
		}
	}
}

func TestIngest_OnlyTemperature(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := testutil.NewRecorder()
	h.HandleIngest(rec, testutil.NewJSONRequest(t, "POST", "/sensors/iot", map[string]any{
		"API_KEY": testKey,
		"temp":    19,
	}))
	rec.AssertStatus(t, http.StatusOK)

	n, err := fx.DB().Collection(models.CollectionHumiditySensor).CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("humidity_sensor: got %d documents, want 0", n)
	}
}

func TestIngest_Rejects(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name   string
		body   map[string]any
		status int
		msg    string
	}{
		{"missing key", map[string]any{"temp": 20}, http.StatusUnauthorized, "Invalid API key"},
		{"wrong key", map[string]any{"API_KEY": "nope", "temp": 20}, http.StatusUnauthorized, "Invalid API key"},
		{"no readings", map[string]any{"API_KEY": testKey}, http.StatusBadRequest, "Invalid request"},
		{"null readings", map[string]any{"API_KEY": testKey, "temp": nil, "humidity": nil}, http.StatusBadRequest, "Invalid request"},
		{"non-numeric temp", map[string]any{"API_KEY": testKey, "temp": "warm"}, http.StatusBadRequest, "Invalid request"},
		{"humidity above 1", map[string]any{"API_KEY": testKey, "temp": 20, "humidity": 55}, http.StatusBadRequest, humidityMsg},
		{"negative humidity", map[string]any{"API_KEY": testKey, "temp": 20, "humidity": -0.1}, http.StatusBadRequest, humidityMsg},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleIngest(rec, testutil.NewJSONRequest(t, "POST", "/sensors/iot", tc.body))
			rec.AssertStatus(t, tc.status)

			var body struct {
				ErrorMessage string `json:"error_message"`
				ErrorCode    int    `json:"error_code"`
			}
			rec.DecodeJSON(t, &body)
			if body.ErrorMessage != tc.msg {
				t.Errorf("error_message: got %q, want %q", body.ErrorMessage, tc.msg)
			}
			if body.ErrorCode != tc.status {
				t.Errorf("error_code: got %d, want %d", body.ErrorCode, tc.status)
			}
		})
	}

	n, err := fx.DB().Collection(models.CollectionTempSensor).CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("rejected requests stored %d readings", n)
	}
}

func TestIngest_HumidityBounds(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, v := range []float64{0, 1} {
		rec := testutil.NewRecorder()
		h.HandleIngest(rec, testutil.NewJSONRequest(t, "POST", "/sensors/iot", map[string]any{
			"API_KEY":  testKey,
			"humidity": v,
		}))
		rec.AssertStatus(t, http.StatusOK)
	}

	n, err := fx.DB().Collection(models.CollectionHumiditySensor).CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("humidity_sensor: got %d documents, want 2", n)
	}
}

func TestIngest_MalformedBody(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewRequest("POST", "/sensors/iot")
	req.Body = http.NoBody
	rec := testutil.NewRecorder()
	h.HandleIngest(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestIngest_EmptyConfiguredKeyRejectsAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := sensors.NewHandler(db, "", zap.NewNop())

	rec := testutil.NewRecorder()
	h.HandleIngest(rec, testutil.NewJSONRequest(t, "POST", "/sensors/iot", map[string]any{
		"API_KEY": "",
		"temp":    20,
	}))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestReadAll(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	fx.CreateReading(ctx, models.CollectionTempSensor, 18, now.Add(-time.Hour))
	fx.CreateReading(ctx, models.CollectionTempSensor, 22.5, now)

	rec := testutil.NewRecorder()
	h.ServeReadAll(rec, testutil.NewRequest("GET", "/sensors/read"))
	rec.AssertStatus(t, http.StatusOK)

	var body map[string]*float64
	rec.DecodeJSON(t, &body)
	if body["temp"] == nil || *body["temp"] != 22.5 {
		t.Errorf("temp: got %v, want 22.5", body["temp"])
	}
	v, ok := body["humidity"]
	if !ok {
		t.Error("humidity key missing")
	} else if v != nil {
		t.Errorf("humidity: got %v, want null", *v)
	}
}

func TestReadKey(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateReading(ctx, models.CollectionHumiditySensor, 0.55, time.Now())

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/sensors/read/humidity"), "key", "humidity")
	rec := testutil.NewRecorder()
	h.ServeReadKey(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var body map[string]*float64
	rec.DecodeJSON(t, &body)
	if len(body) != 1 {
		t.Errorf("expected exactly one key, got %v", body)
	}
	if body["humidity"] == nil || *body["humidity"] != 0.55 {
		t.Errorf("humidity: got %v, want 0.55", body["humidity"])
	}
}

func TestReadKey_Unknown(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/sensors/read/pressure"), "key", "pressure")
	rec := testutil.NewRecorder()
	h.ServeReadKey(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	if !strings.Contains(rec.Body.String(), `Invalid key: 'pressure'`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRoutes(t *testing.T) {
	h, _ := newHandler(t)
	r := sensors.Routes(h)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest("GET", "/read/temp"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"temp":null`)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest("GET", "/iot"))
	rec.AssertStatus(t, http.StatusMethodNotAllowed)
}

func TestHistory_Pages(t *testing.T) {
	h, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		if _, err := h.Temperature.Save(ctx, float64(i)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	type page struct {
		Key      string `json:"key"`
		Readings []struct {
			Value float64 `json:"value"`
		} `json:"readings"`
		Next string `json:"next"`
	}

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/sensors/history/temp?limit=3"), "key", "temp")
	rec := testutil.NewRecorder()
	h.ServeHistory(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var first page
	rec.DecodeJSON(t, &first)
	if len(first.Readings) != 3 || first.Readings[0].Value != 4 {
		t.Fatalf("first page: %+v", first)
	}
	if first.Next == "" {
		t.Fatal("expected a next cursor")
	}

	req = testutil.WithChiURLParam(
		testutil.NewRequest("GET", "/sensors/history/temp?limit=3&before="+first.Next), "key", "temp")
	rec = testutil.NewRecorder()
	h.ServeHistory(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var second page
	rec.DecodeJSON(t, &second)
	if len(second.Readings) != 2 || second.Readings[1].Value != 0 {
		t.Errorf("second page: %+v", second)
	}
	if second.Next != "" {
		t.Errorf("last page should have no cursor, got %q", second.Next)
	}
}

func TestHistory_BadInput(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/sensors/history/temp?before=nope"), "key", "temp")
	rec := testutil.NewRecorder()
	h.ServeHistory(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)

	req = testutil.WithChiURLParam(testutil.NewRequest("GET", "/sensors/history/wind"), "key", "wind")
	rec = testutil.NewRecorder()
	h.ServeHistory(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestRoutes_IngestRateLimited(t *testing.T) {
	h, _ := newHandler(t)
	h.Limiter = ratelimit.New(1, time.Minute)
	defer h.Limiter.Stop()
	r := sensors.Routes(h)

	body := map[string]any{"API_KEY": testKey, "temp": 20}
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/iot", body))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/iot", body))
	rec.AssertStatus(t, http.StatusTooManyRequests)

	// reads are not throttled
	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest("GET", "/read"))
	rec.AssertStatus(t, http.StatusOK)
}
