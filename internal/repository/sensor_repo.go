package repository

import (
	"context"
	"database/sql"
	"errors"

	"machinewise/internal/models"
)

type SensorSQLite struct {
	db *sql.DB
}

func NewSensorSQLite(db *sql.DB) *SensorSQLite { return &SensorSQLite{db: db} }

const (
	selectSensorsSQL       = `SELECT id, name, type, unit, threshold, min_value, max_value, is_active FROM sensors ORDER BY id ASC`
	selectActiveSensorsSQL = `SELECT id, name, type, unit, threshold, min_value, max_value, is_active FROM sensors WHERE is_active = 1 ORDER BY id ASC`
	selectActiveByTypeSQL  = `SELECT id, name, type, unit, threshold, min_value, max_value, is_active FROM sensors WHERE type = ? AND is_active = 1 ORDER BY id ASC LIMIT 1`

	insertSensorSQL = `
		INSERT INTO sensors (name, type, unit, threshold, min_value, max_value, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	updateSensorSQL = `
		UPDATE sensors SET name=?, type=?, unit=?, threshold=?, min_value=?, max_value=?, is_active=?
		WHERE id=?
	`

	deleteSensorSQL = `DELETE FROM sensors WHERE id=?`

	// Upsert-by-name so repeated bootstraps never duplicate a built-in.
	upsertDefaultSensorSQL = `
		INSERT INTO sensors (name, type, unit, threshold, min_value, max_value, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(name) DO NOTHING
	`
)

// DefaultSensors are the four built-in definitions seeded on an empty catalog.
var DefaultSensors = []models.Sensor{
	{Name: "Temperature", Type: models.TypeTemperature, Unit: "°C", Threshold: 80, MinValue: 20, MaxValue: 100, IsActive: true},
	{Name: "Vibration", Type: models.TypeVibration, Unit: "mm/s", Threshold: 20, MinValue: 0, MaxValue: 30, IsActive: true},
	{Name: "Current", Type: models.TypeCurrent, Unit: "A", Threshold: 15, MinValue: 5, MaxValue: 20, IsActive: true},
	{Name: "Voltage", Type: models.TypeVoltage, Unit: "V", Threshold: 250, MinValue: 200, MaxValue: 300, IsActive: true},
}

func scanSensor(row interface{ Scan(...any) error }) (models.Sensor, error) {
	var s models.Sensor
	err := row.Scan(&s.ID, &s.Name, &s.Type, &s.Unit, &s.Threshold, &s.MinValue, &s.MaxValue, &s.IsActive)
	return s, err
}

func (r *SensorSQLite) list(ctx context.Context, query string, args ...any) ([]models.Sensor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Sensor, 0, 8)
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every sensor definition, active or not.
func (r *SensorSQLite) List(ctx context.Context) ([]models.Sensor, error) {
	return r.list(ctx, selectSensorsSQL)
}

// ListActive returns active definitions in catalog (insertion) order.
func (r *SensorSQLite) ListActive(ctx context.Context) ([]models.Sensor, error) {
	return r.list(ctx, selectActiveSensorsSQL)
}

// GetActiveByType resolves the active definition for a sensor type.
// Returns ErrSensorNotFound when no active sensor has that type.
func (r *SensorSQLite) GetActiveByType(ctx context.Context, typ models.SensorType) (models.Sensor, error) {
	s, err := scanSensor(r.db.QueryRowContext(ctx, selectActiveByTypeSQL, string(typ)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sensor{}, ErrSensorNotFound
	}
	if err != nil {
		return models.Sensor{}, err
	}
	return s, nil
}

// Create inserts a new sensor definition and returns its ID.
func (r *SensorSQLite) Create(ctx context.Context, s models.Sensor) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertSensorSQL,
		s.Name, string(s.Type), s.Unit, s.Threshold, s.MinValue, s.MaxValue, s.IsActive,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update rewrites an existing definition in place.
func (r *SensorSQLite) Update(ctx context.Context, s models.Sensor) error {
	res, err := r.db.ExecContext(ctx, updateSensorSQL,
		s.Name, string(s.Type), s.Unit, s.Threshold, s.MinValue, s.MaxValue, s.IsActive, s.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// Delete removes a definition. History keeps its denormalized copies.
func (r *SensorSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteSensorSQL, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// EnsureDefaults upserts the built-in definitions. Safe to call repeatedly.
func (r *SensorSQLite) EnsureDefaults(ctx context.Context) error {
	for _, s := range DefaultSensors {
		if _, err := r.db.ExecContext(ctx, upsertDefaultSensorSQL,
			s.Name, string(s.Type), s.Unit, s.Threshold, s.MinValue, s.MaxValue,
		); err != nil {
			return err
		}
	}
	return nil
}
