package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricProcessRuns     = "hunkstage.process.runs"
	metricProcessDuration = "hunkstage.process.duration"

	metricStageSessions = "hunkstage.stage.sessions"
	metricStageHunks    = "hunkstage.stage.hunks"
	metricStageDuration = "hunkstage.stage.duration"

	attrExecutable = "executable"
	attrExitCode   = "exit_code"
	attrOutcome    = "outcome"
	attrOp         = "op"
	attrBackend    = "backend"
	attrStatus     = "status"
	attrDecision   = "decision"

	outcomeOK     = "ok"
	outcomeFailed = "failed"
)

// ProcessMetrics records child process runs.
type ProcessMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// NewProcessMetrics creates process instruments from the given meter.
func NewProcessMetrics(mt metric.Meter) (*ProcessMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &ProcessMetrics{
		runs:     b.count(metricProcessRuns, "Child processes run", "{process}"),
		duration: b.seconds(metricProcessDuration, "Child process wall time"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordProcess records one finished process.
func (pm *ProcessMetrics) RecordProcess(ctx context.Context, name string, exitCode int, duration time.Duration) {
	outcome := outcomeOK
	if exitCode != 0 {
		outcome = outcomeFailed
	}

	attrs := metric.WithAttributes(
		attribute.String(attrExecutable, name),
		attribute.String(attrOutcome, outcome),
		attribute.Int(attrExitCode, exitCode),
	)

	pm.runs.Add(ctx, 1, attrs)
	pm.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(attrExecutable, name),
		attribute.String(attrOutcome, outcome),
	))
}

// StageMetrics records staging sessions.
type StageMetrics struct {
	sessions metric.Int64Counter
	hunks    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewStageMetrics creates staging instruments from the given meter.
func NewStageMetrics(mt metric.Meter) (*StageMetrics, error) {
	b := newMetricBuilder(mt)

	sm := &StageMetrics{
		sessions: b.count(metricStageSessions, "Staging sessions by outcome", "{session}"),
		hunks:    b.count(metricStageHunks, "Hunks answered in staging sessions", "{hunk}"),
		duration: b.seconds(metricStageDuration, "Staging session wall time"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return sm, nil
}

// RecordSession records one staging session. op is "stage" or "unstage";
// selected of total hunks were answered yes.
func (sm *StageMetrics) RecordSession(
	ctx context.Context, op, backend, status string, selected, total int, duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrBackend, backend),
		attribute.String(attrStatus, status),
	)

	sm.sessions.Add(ctx, 1, attrs)
	sm.duration.Record(ctx, duration.Seconds(), attrs)

	sm.hunks.Add(ctx, int64(selected), metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrDecision, "yes"),
	))
	sm.hunks.Add(ctx, int64(total-selected), metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrDecision, "no"),
	))
}
