package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName    = "github.com/roomieradar/roomieradar/internal/monitoring"
	instrumentationVersion = "1.0.0"
)

func meterFrom(provider metric.MeterProvider) metric.Meter {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	return provider.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))
}

// MatchInstrumentation records match computation and swipe outcomes. It
// satisfies interfaces.MatchRecorder.
type MatchInstrumentation struct {
	matchRequestsTotal metric.Int64Counter
	matchCandidates    metric.Int64Histogram
	matchDuration      metric.Float64Histogram
	swipesTotal        metric.Int64Counter
	mutualMatchesTotal metric.Int64Counter
	swipeRetriesTotal  metric.Int64Counter
}

// NewMatchInstrumentation builds the instruments on provider, or on the
// global provider when nil.
func NewMatchInstrumentation(provider metric.MeterProvider) (*MatchInstrumentation, error) {
	meter := meterFrom(provider)

	matchRequestsTotal, err := meter.Int64Counter(
		"match_requests_total",
		metric.WithDescription("Total number of match list computations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create match_requests_total counter: %w", err)
	}

	matchCandidates, err := meter.Int64Histogram(
		"match_candidates",
		metric.WithDescription("Number of candidates returned per match computation"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create match_candidates histogram: %w", err)
	}

	matchDuration, err := meter.Float64Histogram(
		"match_duration_seconds",
		metric.WithDescription("Match computation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create match_duration_seconds histogram: %w", err)
	}

	swipesTotal, err := meter.Int64Counter(
		"swipes_total",
		metric.WithDescription("Total number of recorded swipes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create swipes_total counter: %w", err)
	}

	mutualMatchesTotal, err := meter.Int64Counter(
		"mutual_matches_total",
		metric.WithDescription("Total number of mutual matches created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mutual_matches_total counter: %w", err)
	}

	swipeRetriesTotal, err := meter.Int64Counter(
		"swipe_retries_total",
		metric.WithDescription("Swipe transactions retried after a serialization conflict"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create swipe_retries_total counter: %w", err)
	}

	return &MatchInstrumentation{
		matchRequestsTotal: matchRequestsTotal,
		matchCandidates:    matchCandidates,
		matchDuration:      matchDuration,
		swipesTotal:        swipesTotal,
		mutualMatchesTotal: mutualMatchesTotal,
		swipeRetriesTotal:  swipeRetriesTotal,
	}, nil
}

func (m *MatchInstrumentation) RecordMatchRequest(ctx context.Context, candidates int, duration time.Duration) {
	m.matchRequestsTotal.Add(ctx, 1)
	m.matchCandidates.Record(ctx, int64(candidates))
	m.matchDuration.Record(ctx, duration.Seconds())
}

func (m *MatchInstrumentation) RecordSwipe(ctx context.Context, direction string, matched bool) {
	m.swipesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.Bool("matched", matched),
	))
	if matched {
		m.mutualMatchesTotal.Add(ctx, 1)
	}
}

func (m *MatchInstrumentation) RecordSwipeRetry(ctx context.Context) {
	m.swipeRetriesTotal.Add(ctx, 1)
}
