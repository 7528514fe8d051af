package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"machinewise/internal/logger"
	"machinewise/internal/metrics"
	"machinewise/internal/models"
	"machinewise/internal/repository"
)

const (
	// DefaultTick is the broadcast cadence; it doubles as the retry
	// interval after a failed bootstrap.
	DefaultTick = 5 * time.Second

	subscriberBuffer = 8
)

// Subscriber is one live connection's receive side. The channel is closed by
// Unsubscribe or when the broadcaster shuts down.
type Subscriber struct {
	ch chan models.Snapshot
}

// Snapshots delivers published snapshots. A subscriber that falls behind
// misses snapshots instead of blocking the cycle.
func (s *Subscriber) Snapshots() <-chan models.Snapshot { return s.ch }

// BroadcasterService runs the timer-driven generate→classify→persist→publish
// cycle and fans completed snapshots out to live subscribers.
type BroadcasterService struct {
	sensors  repository.SensorRepo
	readings repository.ReadingRepo
	producer Producer
	log      *logger.Logger

	// inFlight guards cycle entry only; feed writes and on-demand reads
	// proceed concurrently with a cycle.
	inFlight atomic.Bool

	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

func NewBroadcasterService(sensors repository.SensorRepo, readings repository.ReadingRepo, producer Producer, log *logger.Logger) *BroadcasterService {
	return &BroadcasterService{
		sensors:  sensors,
		readings: readings,
		producer: producer,
		log:      log,
		subs:     make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new live subscriber. There is no catch-up replay;
// the subscriber sees the next published snapshot only.
func (b *BroadcasterService) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan models.Snapshot, subscriberBuffer)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()
	metrics.SetLiveSubscribers(n)
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// more than once.
func (b *BroadcasterService) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
	n := len(b.subs)
	b.mu.Unlock()
	metrics.SetLiveSubscribers(n)
}

// Run ticks at the given interval until ctx is canceled, then closes every
// subscriber channel. It does not wait for an in-flight cycle.
func (b *BroadcasterService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultTick
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return
		case <-t.C:
			b.TryCycle(ctx)
		}
	}
}

// TryCycle starts one full cycle unless another is already in flight, in
// which case the tick is dropped, not queued. Returns whether a cycle ran.
func (b *BroadcasterService) TryCycle(ctx context.Context) bool {
	if !b.inFlight.CompareAndSwap(false, true) {
		metrics.TickDropped()
		b.log.Debugw("broadcast_tick_dropped")
		return false
	}
	defer b.inFlight.Store(false)

	if err := b.cycle(ctx, true); err != nil {
		metrics.CycleDone(metrics.ResultError)
		b.log.Errorw("broadcast_cycle_failed", "err", err)
		return true
	}
	metrics.CycleDone(metrics.ResultSuccess)
	return true
}

// cycle runs one generate→classify→persist→publish pass. An empty catalog is
// seeded with the default sensors and the cycle re-runs once; EnsureDefaults
// is an upsert-by-name, so repeated seeding never duplicates definitions.
func (b *BroadcasterService) cycle(ctx context.Context, seedIfEmpty bool) error {
	active, err := b.sensors.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		if !seedIfEmpty {
			return nil
		}
		if err := b.sensors.EnsureDefaults(ctx); err != nil {
			return err
		}
		return b.cycle(ctx, false)
	}

	b.publish(b.buildSnapshot(ctx, active, true))
	return nil
}

// buildSnapshot classifies one value per sensor. With persist set, each
// reading is appended before it joins the snapshot; a failed append drops
// that sensor from the snapshot but the pass continues, so a partial
// snapshot is still published.
func (b *BroadcasterService) buildSnapshot(ctx context.Context, active []models.Sensor, persist bool) models.Snapshot {
	now := time.Now().UTC()
	readings := make([]models.Reading, 0, len(active))
	for _, s := range active {
		r := Classify(s, b.producer.Generate(s), now)
		if persist {
			if err := b.readings.Append(ctx, r); err != nil {
				b.log.Errorw("reading_append_failed", "sensor", s.Name, "err", err)
				continue
			}
			metrics.ReadingStored(metrics.SourceSimulated)
		}
		readings = append(readings, r)
	}
	return NewSnapshot(now, readings)
}

// OnDemand builds a snapshot for a single requester outside the timer
// cadence: no persistence, no fan-out, and no touch of the cycle lock, so a
// burst of requests can never starve or duplicate the scheduled cycle.
func (b *BroadcasterService) OnDemand(ctx context.Context) (models.Snapshot, error) {
	active, err := b.sensors.ListActive(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	return b.buildSnapshot(ctx, active, false), nil
}

// publish delivers snap to every subscriber without blocking; a subscriber
// with a full buffer misses this snapshot.
func (b *BroadcasterService) publish(snap models.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

func (b *BroadcasterService) closeAll() {
	b.mu.Lock()
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
	b.mu.Unlock()
	metrics.SetLiveSubscribers(0)
}
