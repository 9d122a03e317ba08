package usecase

import (
	"context"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer and meter of the refactoring pipeline
const InstrumentationName = "swarm.refactor"

// telemetry holds the tracer and instruments of one UseCases instance
type telemetry struct {
	tracer           trace.Tracer
	filesTotal       metric.Int64Counter
	transitionsTotal metric.Int64Counter
	fixCallsTotal    metric.Int64Counter
	judgeRunsTotal   metric.Int64Counter
	fileDuration     metric.Float64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	meter := mp.Meter(InstrumentationName)
	t := &telemetry{tracer: tp.Tracer(InstrumentationName)}

	var err error
	if t.filesTotal, err = meter.Int64Counter(
		"swarm_files_processed_total",
		metric.WithDescription("Files processed by outcome"),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to create files counter")
	}

	if t.transitionsTotal, err = meter.Int64Counter(
		"swarm_state_transitions_total",
		metric.WithDescription("State machine transitions by target state"),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to create transitions counter")
	}

	if t.fixCallsTotal, err = meter.Int64Counter(
		"swarm_fix_calls_total",
		metric.WithDescription("Fixer invocations, first pass and retries"),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to create fix calls counter")
	}

	if t.judgeRunsTotal, err = meter.Int64Counter(
		"swarm_judge_runs_total",
		metric.WithDescription("Judge runs by verdict"),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to create judge runs counter")
	}

	if t.fileDuration, err = meter.Float64Histogram(
		"swarm_file_duration_seconds",
		metric.WithDescription("Wall time spent on one file"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to create file duration histogram")
	}

	return t, nil
}

// buildTelemetry falls back to no-op instruments when the providers refuse
// to create them
func buildTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *telemetry {
	t, err := newTelemetry(tp, mp)
	if err == nil {
		return t
	}
	logging.Default().Warn("Telemetry disabled", "error", err)
	t, _ = newTelemetry(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	return t
}

func (t *telemetry) startFileSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "Refactor.ProcessFile",
		trace.WithAttributes(attribute.String("swarm.file", path)),
	)
}

func (t *telemetry) endFileSpan(span trace.Span, report *model.FileReport, err error) {
	span.SetAttributes(
		attribute.String("swarm.outcome", report.Outcome.String()),
		attribute.Float64("swarm.score_before", report.ScoreBefore),
		attribute.Float64("swarm.score_final", report.ScoreFinal),
		attribute.Int("swarm.fix_calls", report.FixCalls),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *telemetry) recordTransition(ctx context.Context, to types.State) {
	t.transitionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("state", to.String())))
}

func (t *telemetry) recordFixCall(ctx context.Context, retry bool) {
	t.fixCallsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("retry", retry)))
}

func (t *telemetry) recordJudgeRun(ctx context.Context, passed bool) {
	t.judgeRunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("passed", passed)))
}

func (t *telemetry) recordFile(ctx context.Context, outcome types.Outcome, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome.String()))
	t.filesTotal.Add(ctx, 1, attrs)
	t.fileDuration.Record(ctx, d.Seconds(), attrs)
}
