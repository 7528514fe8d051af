package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"machinewise/internal/models"
	"machinewise/internal/repository/db"
)

// ErrSensorNotFound is returned when a lookup matches no sensor.
var ErrSensorNotFound = errors.New("sensor not found")

// SensorRepo is the durable sensor catalog.
type SensorRepo interface {
	List(ctx context.Context) ([]models.Sensor, error)
	ListActive(ctx context.Context) ([]models.Sensor, error)
	GetActiveByType(ctx context.Context, typ models.SensorType) (models.Sensor, error)
	Create(ctx context.Context, s models.Sensor) (int64, error)
	Update(ctx context.Context, s models.Sensor) error
	Delete(ctx context.Context, id int64) error
	EnsureDefaults(ctx context.Context) error
}

// ReadingRepo is the append-only time-series store of classified readings.
type ReadingRepo interface {
	Append(ctx context.Context, r models.Reading) error
	Query(ctx context.Context, f ReadingFilter) ([]models.Reading, error)
}

// ReadingFilter combines optional query constraints with AND semantics.
// Zero values mean "unconstrained"; Limit <= 0 means no LIMIT clause.
type ReadingFilter struct {
	SensorID int64
	From     time.Time
	To       time.Time
	Limit    int
}

type Repository struct {
	Sensors  SensorRepo
	Readings ReadingRepo
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{
		Sensors:  NewSensorSQLite(database),
		Readings: NewReadingSQLite(database),
	}
}

// InitDB opens the SQLite database and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
