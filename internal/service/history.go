package service

import (
	"context"
	"errors"
	"time"

	"machinewise/internal/models"
	"machinewise/internal/repository"
)

// DefaultQueryLimit caps historical queries when the caller passes none.
// Internal callers may pass explicit higher limits.
const DefaultQueryLimit = 100

// HistoryFilter narrows a historical query; zero fields are unconstrained.
type HistoryFilter struct {
	SensorID int64
	From     time.Time
	To       time.Time
	Limit    int
}

type HistoryService struct {
	readings repository.ReadingRepo
}

func NewHistoryService(readings repository.ReadingRepo) *HistoryService {
	return &HistoryService{readings: readings}
}

// ErrInvalidTimeRange rejects queries whose bounds are inverted.
var ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// Query returns matching readings, newest first, ties broken by insertion
// order (most recently written first).
func (s *HistoryService) Query(ctx context.Context, f HistoryFilter) ([]models.Reading, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidTimeRange
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	return s.readings.Query(ctx, repository.ReadingFilter{
		SensorID: f.SensorID,
		From:     from,
		To:       to,
		Limit:    limit,
	})
}
