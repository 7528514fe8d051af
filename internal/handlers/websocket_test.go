package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"machinewise/internal/logger"
	"machinewise/internal/models"
	"machinewise/internal/repository"
	"machinewise/internal/service"

	"github.com/gorilla/websocket"
)

// ---- Repository stubs for end-to-end live-channel tests ----

type wsSensorRepoStub struct {
	mu      sync.Mutex
	active  []models.Sensor
	listErr error
}

func (s *wsSensorRepoStub) List(ctx context.Context) ([]models.Sensor, error) {
	return s.ListActive(ctx)
}

func (s *wsSensorRepoStub) ListActive(ctx context.Context) ([]models.Sensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Sensor, len(s.active))
	copy(out, s.active)
	return out, nil
}

func (s *wsSensorRepoStub) GetActiveByType(ctx context.Context, typ models.SensorType) (models.Sensor, error) {
	return models.Sensor{}, repository.ErrSensorNotFound
}
func (s *wsSensorRepoStub) Create(ctx context.Context, sensor models.Sensor) (int64, error) {
	return 0, nil
}
func (s *wsSensorRepoStub) Update(ctx context.Context, sensor models.Sensor) error { return nil }
func (s *wsSensorRepoStub) Delete(ctx context.Context, id int64) error             { return nil }
func (s *wsSensorRepoStub) EnsureDefaults(ctx context.Context) error               { return nil }

type wsReadingRepoStub struct {
	mu      sync.Mutex
	appends int
}

func (r *wsReadingRepoStub) Append(ctx context.Context, rd models.Reading) error {
	r.mu.Lock()
	r.appends++
	r.mu.Unlock()
	return nil
}

func (r *wsReadingRepoStub) Query(ctx context.Context, f repository.ReadingFilter) ([]models.Reading, error) {
	return nil, nil
}

func (r *wsReadingRepoStub) appendCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appends
}

// wsFixture runs a real broadcaster behind an httptest server and dials the
// live channel.
type wsFixture struct {
	broadcaster *service.BroadcasterService
	readings    *wsReadingRepoStub
	conn        *websocket.Conn
}

func newWSFixture(t *testing.T, sensors *wsSensorRepoStub) *wsFixture {
	t.Helper()

	readings := &wsReadingRepoStub{}
	b := service.NewBroadcasterService(sensors, readings, service.NewSimulatorService(), logger.Get(logger.ErrorLevel))

	r := newTestRouter(&service.Service{Broadcaster: b})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &wsFixture{broadcaster: b, readings: readings, conn: conn}
}

func (f *wsFixture) readEnvelope(t *testing.T) (string, json.RawMessage) {
	t.Helper()
	_ = f.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := f.conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env.Type, env.Data
}

func wsSensors() []models.Sensor {
	return []models.Sensor{
		{ID: 1, Name: "Temperature", Type: models.TypeTemperature, Unit: "°C", Threshold: 80, MinValue: 20, MaxValue: 100, IsActive: true},
		{ID: 2, Name: "Vibration", Type: models.TypeVibration, Unit: "mm/s", Threshold: 20, MinValue: 0, MaxValue: 30, IsActive: true},
	}
}

// ---- Tests ----

func TestWS_ReceivesScheduledSnapshots(t *testing.T) {
	f := newWSFixture(t, &wsSensorRepoStub{active: wsSensors()})

	// Drive cycles until the connection's subscription is in place and a
	// snapshot arrives. Subscription happens inside the server handler, so
	// the first cycles may fire before it registers.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(20 * time.Millisecond):
				f.broadcaster.TryCycle(context.Background())
			}
		}
	}()

	typ, data := f.readEnvelope(t)
	if typ != "sensorData" {
		t.Fatalf("event type = %q, want sensorData", typ)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Sensors) != 2 {
		t.Fatalf("snapshot sensors = %d, want 2", len(snap.Sensors))
	}
	if snap.Status == "" {
		t.Fatal("snapshot status must be set")
	}
}

func TestWS_RequestSensorData_BareToken(t *testing.T) {
	f := newWSFixture(t, &wsSensorRepoStub{active: wsSensors()})

	if err := f.conn.WriteMessage(websocket.TextMessage, []byte("requestSensorData")); err != nil {
		t.Fatalf("write request: %v", err)
	}

	typ, data := f.readEnvelope(t)
	if typ != "sensorData" {
		t.Fatalf("event type = %q, want sensorData", typ)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Sensors) != 2 {
		t.Fatalf("snapshot sensors = %d, want 2", len(snap.Sensors))
	}

	// On-demand replies never persist.
	if got := f.readings.appendCount(); got != 0 {
		t.Fatalf("appends = %d, want 0", got)
	}
}

func TestWS_RequestSensorData_JSONEnvelope(t *testing.T) {
	f := newWSFixture(t, &wsSensorRepoStub{active: wsSensors()})

	if err := f.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"requestSensorData"}`)); err != nil {
		t.Fatalf("write request: %v", err)
	}

	typ, _ := f.readEnvelope(t)
	if typ != "sensorData" {
		t.Fatalf("event type = %q, want sensorData", typ)
	}
}

func TestWS_RequestSensorData_ErrorReply(t *testing.T) {
	f := newWSFixture(t, &wsSensorRepoStub{listErr: context.DeadlineExceeded})

	if err := f.conn.WriteMessage(websocket.TextMessage, []byte("requestSensorData")); err != nil {
		t.Fatalf("write request: %v", err)
	}

	typ, data := f.readEnvelope(t)
	if typ != "sensorError" {
		t.Fatalf("event type = %q, want sensorError", typ)
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Message != "Failed to get sensor data" {
		t.Fatalf("message = %q", payload.Message)
	}
}

func TestWS_UnknownMessageIgnored(t *testing.T) {
	f := newWSFixture(t, &wsSensorRepoStub{active: wsSensors()})

	if err := f.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribe"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// No reply for unrecognized messages and the connection stays open, so a
	// follow-up request still gets answered.
	if err := f.conn.WriteMessage(websocket.TextMessage, []byte("requestSensorData")); err != nil {
		t.Fatalf("write request: %v", err)
	}
	typ, _ := f.readEnvelope(t)
	if typ != "sensorData" {
		t.Fatalf("event type = %q, want sensorData", typ)
	}
}
