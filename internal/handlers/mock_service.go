package handlers

import (
	"context"
	"time"

	"machinewise/internal/models"
	"machinewise/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockCatalog struct {
	listResp   []models.Sensor
	listErr    error
	createResp models.Sensor
	createErr  error
	updateErr  error
	deleteErr  error

	lastCreated models.Sensor
	lastUpdated models.Sensor
	lastDeleted int64
}

func (m *mockCatalog) List(ctx context.Context) ([]models.Sensor, error) {
	return m.listResp, m.listErr
}
func (m *mockCatalog) ListActive(ctx context.Context) ([]models.Sensor, error) {
	return m.listResp, m.listErr
}
func (m *mockCatalog) Create(ctx context.Context, s models.Sensor) (models.Sensor, error) {
	m.lastCreated = s
	return m.createResp, m.createErr
}
func (m *mockCatalog) Update(ctx context.Context, s models.Sensor) error {
	m.lastUpdated = s
	return m.updateErr
}
func (m *mockCatalog) Delete(ctx context.Context, id int64) error {
	m.lastDeleted = id
	return m.deleteErr
}
func (m *mockCatalog) EnsureDefaults(ctx context.Context) error { return nil }

type mockHistory struct {
	resp []models.Reading
	err  error

	lastFilter service.HistoryFilter
	calls      int
}

func (m *mockHistory) Query(ctx context.Context, f service.HistoryFilter) ([]models.Reading, error) {
	m.lastFilter = f
	m.calls++
	return m.resp, m.err
}

type mockBroadcaster struct {
	snap models.Snapshot
	err  error

	onDemandCalls int
}

func (m *mockBroadcaster) Run(ctx context.Context, tick time.Duration) {}
func (m *mockBroadcaster) TryCycle(ctx context.Context) bool           { return true }
func (m *mockBroadcaster) OnDemand(ctx context.Context) (models.Snapshot, error) {
	m.onDemandCalls++
	return m.snap, m.err
}
func (m *mockBroadcaster) Subscribe() *service.Subscriber      { return &service.Subscriber{} }
func (m *mockBroadcaster) Unsubscribe(sub *service.Subscriber) {}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
