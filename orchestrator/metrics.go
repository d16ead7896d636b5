package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the orchestrator's metric instruments.
type Metrics struct {
	runsStarted      metric.Int64Counter
	runsCompleted    metric.Int64Counter
	stageRetries     metric.Int64Counter
	stageDuration    metric.Float64Histogram
	chunksDispatched metric.Int64Counter
}

// NewMetrics creates the orchestrator instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runsStarted, err := meter.Int64Counter("pipeline.runs.started",
		metric.WithDescription("Pipeline executions started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.runs.started counter: %w", err)
	}

	runsCompleted, err := meter.Int64Counter("pipeline.runs.completed",
		metric.WithDescription("Pipeline executions completed, by outcome and failure classification"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.runs.completed counter: %w", err)
	}

	stageRetries, err := meter.Int64Counter("pipeline.stage.retries",
		metric.WithDescription("Stage attempts beyond the first, by stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.stage.retries counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("pipeline.stage.duration",
		metric.WithDescription("Stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.stage.duration histogram: %w", err)
	}

	chunksDispatched, err := meter.Int64Counter("pipeline.chunks.dispatched",
		metric.WithDescription("Chunks confirmed by the queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.chunks.dispatched counter: %w", err)
	}

	return &Metrics{
		runsStarted:      runsStarted,
		runsCompleted:    runsCompleted,
		stageRetries:     stageRetries,
		stageDuration:    stageDuration,
		chunksDispatched: chunksDispatched,
	}, nil
}

// RecordRunStarted counts a new execution.
func (m *Metrics) RecordRunStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.runsStarted.Add(ctx, 1)
}

// RecordRunCompleted counts a finished execution with its outcome.
func (m *Metrics) RecordRunCompleted(ctx context.Context, stage Stage, classification string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("outcome", string(stage))}
	if classification != "" {
		attrs = append(attrs, attribute.String("classification", classification))
	}
	m.runsCompleted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStage records the duration and retry count of one stage.
func (m *Metrics) RecordStage(ctx context.Context, stage Stage, attempts int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("stage", string(stage)))
	m.stageDuration.Record(ctx, elapsed.Seconds(), attrs)
	if attempts > 1 {
		m.stageRetries.Add(ctx, int64(attempts-1), attrs)
	}
}

// RecordChunksDispatched counts queue-confirmed chunks.
func (m *Metrics) RecordChunksDispatched(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chunksDispatched.Add(ctx, int64(n))
}
