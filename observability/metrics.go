package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the metric instruments for segment processing.
// All record methods are safe on a nil receiver.
type PipelineMetrics struct {
	segmentTotal   metric.Int64Counter
	segmentActive  metric.Int64UpDownCounter
	stageDuration  metric.Float64Histogram
	totalDuration  metric.Float64Histogram
	cacheLookups   metric.Int64Counter
	fallbackTotal  metric.Int64Counter
	collabFailures metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	segmentTotal, err := meter.Int64Counter("pipeline.segment.total",
		metric.WithDescription("Speech segments processed, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.segment.total counter: %w", err)
	}

	segmentActive, err := meter.Int64UpDownCounter("pipeline.segment.active",
		metric.WithDescription("Segments currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.segment.active gauge: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("pipeline.stage.duration",
		metric.WithDescription("Duration of each pipeline stage in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.stage.duration histogram: %w", err)
	}

	totalDuration, err := meter.Float64Histogram("pipeline.segment.duration",
		metric.WithDescription("End-to-end segment latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.segment.duration histogram: %w", err)
	}

	cacheLookups, err := meter.Int64Counter("pipeline.cache.lookups",
		metric.WithDescription("Translation cache lookups, by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.cache.lookups counter: %w", err)
	}

	fallbackTotal, err := meter.Int64Counter("pipeline.translation.fallback",
		metric.WithDescription("Translation fallback attempts, by service"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.translation.fallback counter: %w", err)
	}

	collabFailures, err := meter.Int64Counter("pipeline.collaborator.failures",
		metric.WithDescription("Collaborator call failures, by stage and service"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.collaborator.failures counter: %w", err)
	}

	return &PipelineMetrics{
		segmentTotal:   segmentTotal,
		segmentActive:  segmentActive,
		stageDuration:  stageDuration,
		totalDuration:  totalDuration,
		cacheLookups:   cacheLookups,
		fallbackTotal:  fallbackTotal,
		collabFailures: collabFailures,
	}, nil
}

// RecordSegmentStart increments the in-flight segment count.
func (m *PipelineMetrics) RecordSegmentStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.segmentActive.Add(ctx, 1)
}

// RecordSegmentEnd records a finished segment with its outcome and latency.
func (m *PipelineMetrics) RecordSegmentEnd(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.segmentActive.Add(ctx, -1)
	m.segmentTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.totalDuration.Record(ctx, duration.Seconds())
}

// RecordStage records one stage's duration and outcome.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage, service, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("service", service),
		attribute.String("status", status),
	))
}

// RecordCacheLookup records one cache probe.
func (m *PipelineMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordFallback records a fallback attempt against the named service.
func (m *PipelineMetrics) RecordFallback(ctx context.Context, service string) {
	if m == nil {
		return
	}
	m.fallbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("service", service)))
}

// RecordFailure records a collaborator failure at the named stage.
func (m *PipelineMetrics) RecordFailure(ctx context.Context, stage, service string) {
	if m == nil {
		return
	}
	m.collabFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("service", service),
	))
}
