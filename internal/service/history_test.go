package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHistoryQuery_DefaultsLimit(t *testing.T) {
	rr := &stubReadingRepo{}
	svc := NewHistoryService(rr)

	if _, err := svc.Query(context.Background(), HistoryFilter{SensorID: 3}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rr.lastFilter.Limit != DefaultQueryLimit {
		t.Fatalf("Limit = %d, want %d", rr.lastFilter.Limit, DefaultQueryLimit)
	}
	if rr.lastFilter.SensorID != 3 {
		t.Fatalf("SensorID = %d, want 3", rr.lastFilter.SensorID)
	}
}

func TestHistoryQuery_ExplicitLimitPassedThrough(t *testing.T) {
	rr := &stubReadingRepo{}
	svc := NewHistoryService(rr)

	// Cycle-path callers are exempt from the default and may ask for more.
	if _, err := svc.Query(context.Background(), HistoryFilter{Limit: 5000}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rr.lastFilter.Limit != 5000 {
		t.Fatalf("Limit = %d, want 5000", rr.lastFilter.Limit)
	}
}

func TestHistoryQuery_InvertedRangeRejected(t *testing.T) {
	rr := &stubReadingRepo{}
	svc := NewHistoryService(rr)

	now := time.Now()
	_, err := svc.Query(context.Background(), HistoryFilter{From: now, To: now.Add(-time.Hour)})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
	}
	if rr.lastFilter.Limit != 0 {
		t.Fatal("repo must not be queried for an invalid range")
	}
}

func TestHistoryQuery_NormalizesBoundsToUTC(t *testing.T) {
	rr := &stubReadingRepo{}
	svc := NewHistoryService(rr)

	loc := time.FixedZone("UTC+5", 5*3600)
	from := time.Date(2026, 8, 1, 12, 0, 0, 0, loc)
	to := time.Date(2026, 8, 2, 12, 0, 0, 0, loc)

	if _, err := svc.Query(context.Background(), HistoryFilter{From: from, To: to}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rr.lastFilter.From.Location() != time.UTC || rr.lastFilter.To.Location() != time.UTC {
		t.Fatal("expected UTC-normalized bounds")
	}
	if !rr.lastFilter.From.Equal(from) {
		t.Fatal("normalization must not shift the instant")
	}
}
