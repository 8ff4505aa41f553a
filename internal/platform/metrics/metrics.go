// Package metrics exposes Prometheus instruments for possession extraction batches.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeDryRun    = "dry_run"
)

// Option customizes an Extraction before its instruments are registered.
type Option func(*Extraction)

func WithNamespace(namespace string) Option {
	return func(m *Extraction) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers instruments on registry instead of a private one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Extraction) {
		if registry != nil {
			m.registry = registry
		}
	}
}

func WithDurationBuckets(buckets []float64) Option {
	return func(m *Extraction) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// Extraction holds the per-game and per-batch instruments. A nil *Extraction is a no-op.
type Extraction struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	games           *prometheus.CounterVec
	gameDuration    prometheus.Histogram
	possessions     prometheus.Counter
	endReasons      *prometheus.CounterVec
	lowConfidence   prometheus.Counter
	mismatches      prometheus.Counter
	droppedEvents   prometheus.Counter
	malformedEvents prometheus.Counter
	failedChecks    *prometheus.CounterVec
	failures        *prometheus.CounterVec
	batchDuration   prometheus.Gauge
	batchFailed     prometheus.Gauge
}

func NewExtraction(opts ...Option) *Extraction {
	m := &Extraction{
		namespace: "possession",
		buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	factory := promauto.With(m.registry)
	m.games = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "games_total",
		Help:      "Games processed by outcome.",
	}, []string{"outcome"})
	m.gameDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "game_duration_seconds",
		Help:      "Wall time spent on one game including persistence.",
		Buckets:   m.buckets,
	})
	m.possessions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "possessions_total",
		Help:      "Possessions detected.",
	})
	m.endReasons = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "end_reasons_total",
		Help:      "Closed possessions by end reason.",
	}, []string{"reason"})
	m.lowConfidence = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "low_confidence_total",
		Help:      "Ambiguous attributions resolved heuristically.",
	})
	m.mismatches = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "team_mismatch_warnings_total",
		Help:      "Events whose acting team disagreed with the tracked offense.",
	})
	m.droppedEvents = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "dropped_events_total",
		Help:      "Events no possession could claim.",
	})
	m.malformedEvents = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "malformed_events_total",
		Help:      "Rows skipped at the parsing boundary.",
	})
	m.failedChecks = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "quality_check_failures_total",
		Help:      "Failed quality checks by check name.",
	}, []string{"check"})
	m.failures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "game_failures_total",
		Help:      "Failed games by failure kind.",
	}, []string{"kind"})
	m.batchDuration = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "last_batch_duration_seconds",
		Help:      "Elapsed time of the last batch.",
	})
	m.batchFailed = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "last_batch_failed_games",
		Help:      "Failed games in the last batch.",
	})
	return m
}

func (m *Extraction) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveGame records one game's outcome and detector counters.
func (m *Extraction) ObserveGame(result possession.GameProcessingResult, dryRun bool) {
	if m == nil {
		return
	}
	m.gameDuration.Observe(result.Duration.Seconds())
	switch {
	case !result.Success:
		m.games.WithLabelValues(OutcomeFailed).Inc()
		m.failures.WithLabelValues(result.FailureKind).Inc()
	case dryRun:
		m.games.WithLabelValues(OutcomeDryRun).Inc()
	default:
		m.games.WithLabelValues(OutcomeSucceeded).Inc()
	}

	m.possessions.Add(float64(len(result.Possessions)))
	for reason, count := range result.EndReasonCounts {
		m.endReasons.WithLabelValues(string(reason)).Add(float64(count))
	}
	m.lowConfidence.Add(float64(result.LowConfidenceCount))
	m.mismatches.Add(float64(result.TeamMismatchWarnings))
	m.droppedEvents.Add(float64(result.DroppedEventCount))
	m.malformedEvents.Add(float64(result.MalformedEventCount))
	if result.Report != nil {
		for _, name := range result.Report.FailedChecks() {
			m.failedChecks.WithLabelValues(name).Inc()
		}
	}
}

func (m *Extraction) ObserveBatch(elapsed time.Duration, failed int) {
	if m == nil {
		return
	}
	m.batchDuration.Set(elapsed.Seconds())
	m.batchFailed.Set(float64(failed))
}

// Push sends the registry to a Prometheus pushgateway. A CLI batch exits before
// any scrape could happen, so this is the only way its numbers leave the process.
func (m *Extraction) Push(ctx context.Context, url, job string) error {
	if m == nil || url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(m.registry).PushContext(ctx)
}
