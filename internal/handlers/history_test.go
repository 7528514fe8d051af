package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"machinewise/internal/models"
	"machinewise/internal/service"

	"github.com/gin-gonic/gin"
)

func newHistoryRouter(hist *mockHistory) *gin.Engine {
	return newTestRouter(&service.Service{History: hist, Broadcaster: &mockBroadcaster{}})
}

func TestGetHistoricalData_PassesFilters(t *testing.T) {
	hist := &mockHistory{resp: []models.Reading{
		{ID: "r1", SensorID: 3, SensorName: "Current", SensorType: models.TypeCurrent, Value: 18, Unit: "A", Threshold: 15, IsAlert: true, Status: models.StatusWarning, Timestamp: time.Now().UTC()},
	}}
	r := newHistoryRouter(hist)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/sensors/historical?sensorId=3&startTime=2026-08-01&endTime=2026-08-30T10:00:00Z&limit=25", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if hist.lastFilter.SensorID != 3 || hist.lastFilter.Limit != 25 {
		t.Fatalf("filter not forwarded: %+v", hist.lastFilter)
	}
	if hist.lastFilter.From.IsZero() || hist.lastFilter.To.IsZero() {
		t.Fatalf("time bounds not forwarded: %+v", hist.lastFilter)
	}

	var resp struct {
		Count    int              `json:"count"`
		Readings []models.Reading `json:"readings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Readings[0].SensorName != "Current" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetHistoricalData_DateOnlyEndIsEndOfDay(t *testing.T) {
	hist := &mockHistory{}
	r := newHistoryRouter(hist)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sensors/historical?endTime=2026-08-15", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	want := time.Date(2026, 8, 15, 23, 59, 59, 999999999, time.UTC)
	if !hist.lastFilter.To.Equal(want) {
		t.Fatalf("To = %v, want %v", hist.lastFilter.To, want)
	}
}

func TestGetHistoricalData_BadInputs(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"bad_start", "/api/sensors/historical?startTime=yesterday"},
		{"bad_end", "/api/sensors/historical?endTime=tomorrow"},
		{"bad_sensor_id", "/api/sensors/historical?sensorId=zero"},
		{"bad_limit", "/api/sensors/historical?limit=-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hist := &mockHistory{}
			r := newHistoryRouter(hist)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if hist.calls != 0 {
				t.Fatal("service must not be called for invalid input")
			}
		})
	}
}

func TestGetHistoricalData_InvertedRangeRejected(t *testing.T) {
	hist := &mockHistory{err: service.ErrInvalidTimeRange}
	r := newHistoryRouter(hist)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/sensors/historical?startTime=2026-08-30&endTime=2026-08-01", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
