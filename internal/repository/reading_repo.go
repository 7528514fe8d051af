package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"machinewise/internal/models"

	"github.com/google/uuid"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

const (
	insertReadingSQL = `
		INSERT INTO sensor_readings (id, sensor_id, sensor_name, sensor_type, value, unit, threshold, is_alert, status, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectReadingsSQL = `SELECT id, sensor_id, sensor_name, sensor_type, value, unit, threshold, is_alert, status, timestamp FROM sensor_readings`

	// rowid breaks timestamp ties by insertion order, newest write first,
	// so repeated identical queries return stable results.
	orderReadingsSQL = ` ORDER BY timestamp DESC, rowid DESC`
)

// Append inserts a new reading. If ID or Timestamp are empty, they're set.
// A failed insert is returned to the caller, never swallowed.
func (r *ReadingSQLite) Append(ctx context.Context, rd models.Reading) error {
	if rd.ID == "" {
		rd.ID = uuid.NewString()
	}
	if rd.Timestamp.IsZero() {
		rd.Timestamp = time.Now().UTC()
	} else {
		rd.Timestamp = rd.Timestamp.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		rd.ID,
		rd.SensorID,
		rd.SensorName,
		string(rd.SensorType),
		rd.Value,
		rd.Unit,
		rd.Threshold,
		rd.IsAlert,
		string(rd.Status),
		rd.Timestamp,
	)
	return err
}

// Query returns readings matching all supplied filters, newest first.
// Omitted filters are unconstrained; Limit <= 0 returns everything.
func (r *ReadingSQLite) Query(ctx context.Context, f ReadingFilter) ([]models.Reading, error) {
	var (
		conds []string
		args  []any
	)

	if f.SensorID > 0 {
		conds = append(conds, "sensor_id = ?")
		args = append(args, f.SensorID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, f.To.UTC())
	}

	q := selectReadingsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderReadingsSQL
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		var rd models.Reading
		if err := rows.Scan(
			&rd.ID,
			&rd.SensorID,
			&rd.SensorName,
			&rd.SensorType,
			&rd.Value,
			&rd.Unit,
			&rd.Threshold,
			&rd.IsAlert,
			&rd.Status,
			&rd.Timestamp,
		); err != nil {
			return nil, err
		}
		rd.Timestamp = rd.Timestamp.UTC()
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
