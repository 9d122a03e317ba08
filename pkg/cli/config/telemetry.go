package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	telemetryExporterNone   = "none"
	telemetryExporterStdout = "stdout"

	telemetryShutdownTimeout = 5 * time.Second
)

// Telemetry holds the OpenTelemetry exporter configuration
type Telemetry struct {
	exporter string
	output   string
}

// Flags returns CLI flags for telemetry configuration
func (t *Telemetry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "telemetry-exporter",
			Usage:       "Trace and metric exporter (none, stdout)",
			Value:       telemetryExporterNone,
			Category:    "Telemetry",
			Sources:     cli.EnvVars("SWARM_TELEMETRY_EXPORTER"),
			Destination: &t.exporter,
		},
		&cli.StringFlag{
			Name:        "telemetry-output",
			Usage:       "Destination of exported spans and metrics (stdout, stderr, or a file path)",
			Value:       "stderr",
			Category:    "Telemetry",
			Sources:     cli.EnvVars("SWARM_TELEMETRY_OUTPUT"),
			Destination: &t.output,
		},
	}
}

// LogAttrs returns log attributes for the telemetry configuration
func (t *Telemetry) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("exporter", t.exporter),
		slog.String("output", t.output),
	}
}

// Configure installs global tracer and meter providers backed by the
// selected exporter. The returned function flushes and shuts them down.
// With the "none" exporter the global no-op providers stay in place.
func (t *Telemetry) Configure(ctx context.Context, version string) (func(), error) {
	switch t.exporter {
	case "", telemetryExporterNone:
		return func() {}, nil
	case telemetryExporterStdout:
	default:
		return nil, goerr.Wrap(ErrInvalidExporter, "unsupported telemetry exporter", goerr.V(ValueKey, t.exporter))
	}

	w, closeOutput, err := t.openOutput()
	if err != nil {
		return nil, err
	}

	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		closeOutput()
		return nil, goerr.Wrap(err, "failed to create span exporter")
	}
	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		closeOutput()
		return nil, goerr.Wrap(err, "failed to create metric exporter")
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", "swarm"),
		attribute.String("service.version", version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()

		if err := tp.Shutdown(ctx); err != nil {
			logging.Default().Error("Failed to shut down tracer provider", "error", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			logging.Default().Error("Failed to shut down meter provider", "error", err)
		}
		closeOutput()
	}, nil
}

func (t *Telemetry) openOutput() (io.Writer, func(), error) {
	switch t.output {
	case "", "stderr":
		return os.Stderr, func() {}, nil
	case "stdout", "-":
		return os.Stdout, func() {}, nil
	}

	f, err := os.OpenFile(t.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open telemetry output", goerr.V(ValueKey, t.output))
	}
	return f, func() { safe.Close(context.Background(), f) }, nil
}
