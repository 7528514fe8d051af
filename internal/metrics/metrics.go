package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "machinewise_"

	ResultSuccess = "success"
	ResultError   = "error"

	SourceSimulated = "simulated"
	SourceFeed      = "mqtt"

	ReasonMalformed   = "malformed"
	ReasonUnknownType = "unknown_type"
)

var (
	registerOnce sync.Once

	cyclesTotal     *prometheus.CounterVec
	ticksDropped    prometheus.Counter
	readingsTotal   *prometheus.CounterVec
	feedDropped     *prometheus.CounterVec
	liveSubscribers prometheus.Gauge
)

// Init registers broadcast and ingestion metrics. Safe to call once per
// process; helpers below are no-ops before Init so tests need no registry.
func Init() {
	registerOnce.Do(func() {
		cyclesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cycles_total",
				Help: "Completed broadcast cycles by result",
			},
			[]string{"result"},
		)
		ticksDropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ticks_dropped_total",
				Help: "Timer ticks dropped because a cycle was still in flight",
			},
		)
		readingsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_total",
				Help: "Readings persisted by source",
			},
			[]string{"source"},
		)
		feedDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_dropped_total",
				Help: "Feed messages dropped by reason",
			},
			[]string{"reason"},
		)
		liveSubscribers = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "live_subscribers",
				Help: "Currently connected live subscribers",
			},
		)

		prometheus.MustRegister(
			cyclesTotal,
			ticksDropped,
			readingsTotal,
			feedDropped,
			liveSubscribers,
		)
	})
}

func CycleDone(result string) {
	if cyclesTotal != nil {
		cyclesTotal.WithLabelValues(result).Inc()
	}
}

func TickDropped() {
	if ticksDropped != nil {
		ticksDropped.Inc()
	}
}

func ReadingStored(source string) {
	if readingsTotal != nil {
		readingsTotal.WithLabelValues(source).Inc()
	}
}

func FeedDropped(reason string) {
	if feedDropped != nil {
		feedDropped.WithLabelValues(reason).Inc()
	}
}

func SetLiveSubscribers(n int) {
	if liveSubscribers != nil {
		liveSubscribers.Set(float64(n))
	}
}
