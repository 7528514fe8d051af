package service

import (
	"context"
	"time"

	"machinewise/internal/logger"
	"machinewise/internal/models"
	"machinewise/internal/repository"
)

// Catalog manages sensor definitions.
type Catalog interface {
	List(ctx context.Context) ([]models.Sensor, error)
	ListActive(ctx context.Context) ([]models.Sensor, error)
	Create(ctx context.Context, s models.Sensor) (models.Sensor, error)
	Update(ctx context.Context, s models.Sensor) error
	Delete(ctx context.Context, id int64) error
	EnsureDefaults(ctx context.Context) error
}

// History exposes read access to persisted readings.
type History interface {
	Query(ctx context.Context, f HistoryFilter) ([]models.Reading, error)
}

// Producer supplies one raw value per sensor. The simulated producer draws
// from the sensor's configured range; it never classifies or persists.
type Producer interface {
	Generate(s models.Sensor) float64
}

// Broadcaster owns the live subscriber set and the timer-driven cycle.
type Broadcaster interface {
	Run(ctx context.Context, tick time.Duration)
	TryCycle(ctx context.Context) bool
	OnDemand(ctx context.Context) (models.Snapshot, error)
	Subscribe() *Subscriber
	Unsubscribe(sub *Subscriber)
}

// Feed ingests out-of-band readings from the message bus.
type Feed interface {
	HandleMessage(ctx context.Context, topic string, payload []byte) error
}

type Service struct {
	Catalog
	History
	Broadcaster
	Feed
}

// NewService wires repository layer into concrete services.
func NewService(repos *repository.Repository, log *logger.Logger) *Service {
	return &Service{
		Catalog:     NewCatalogService(repos.Sensors),
		History:     NewHistoryService(repos.Readings),
		Broadcaster: NewBroadcasterService(repos.Sensors, repos.Readings, NewSimulatorService(), log),
		Feed:        NewFeedService(repos.Sensors, repos.Readings, log),
	}
}
