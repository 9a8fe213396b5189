package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"tabprep/internal/config"
)

// Telemetry bundles the tracer, the meter provider and the Prometheus
// registry the OTel exporter publishes into.
type Telemetry struct {
	Tracer   trace.Tracer
	Metrics  *RunMetrics
	Registry *prometheus.Registry

	cfg            config.TelemetryConfig
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	traceOut       io.Closer
	logger         *slog.Logger
}

// RunMetrics holds the domain instruments recorded by every command
type RunMetrics struct {
	RunsTotal          metric.Int64Counter
	RunDuration        metric.Float64Histogram
	RowsRead           metric.Int64Counter
	CellsImputed       metric.Int64Counter
	ColumnsTransformed metric.Int64Counter
	RowsDropped        metric.Int64Counter
	ViewerRequests     metric.Int64Counter
}

// InitializeTelemetry sets up tracing and metrics according to cfg.
// Tracing "none" uses the global no-op tracer. Metrics are always collected.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Telemetry{
		cfg:      cfg,
		Registry: prometheus.NewRegistry(),
		logger:   WithComponent(logger, "telemetry"),
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.AppName),
		semconv.ServiceVersion(config.AppVersion),
		attribute.String("service.instance.id", GenerateTraceID()),
	)

	if err := t.initTracing(res); err != nil {
		return nil, err
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.Metrics, err = newRunMetrics(t.meterProvider.Meter(config.AppName))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	t.logger.Debug("telemetry initialized",
		slog.String("tracing", cfg.Tracing),
		slog.String("metrics_file", cfg.MetricsFile))
	return t, nil
}

func (t *Telemetry) initTracing(res *resource.Resource) error {
	if t.cfg.Tracing != "stdout" {
		t.Tracer = otel.GetTracerProvider().Tracer(config.AppName)
		return nil
	}

	var w io.Writer = os.Stderr
	if t.cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(t.cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.OpenFile(t.cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open trace file: %w", err)
		}
		t.traceOut = f
		w = f
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	t.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	t.Tracer = t.tracerProvider.Tracer(config.AppName)
	return nil
}

func newRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	m := &RunMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter("tabprep_runs_total",
		metric.WithDescription("Completed command runs by command and status")); err != nil {
		return nil, err
	}
	if m.RunDuration, err = meter.Float64Histogram("tabprep_run_duration_seconds",
		metric.WithDescription("Command run duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.RowsRead, err = meter.Int64Counter("tabprep_rows_read_total",
		metric.WithDescription("Rows loaded from input files")); err != nil {
		return nil, err
	}
	if m.CellsImputed, err = meter.Int64Counter("tabprep_cells_imputed_total",
		metric.WithDescription("Missing cells filled, by strategy")); err != nil {
		return nil, err
	}
	if m.ColumnsTransformed, err = meter.Int64Counter("tabprep_columns_transformed_total",
		metric.WithDescription("Columns rewritten by the transformer, by kind")); err != nil {
		return nil, err
	}
	if m.RowsDropped, err = meter.Int64Counter("tabprep_rows_dropped_total",
		metric.WithDescription("Rows removed by the cleaner, by reason")); err != nil {
		return nil, err
	}
	if m.ViewerRequests, err = meter.Int64Counter("tabprep_viewer_requests_total",
		metric.WithDescription("Viewer API requests by route and status")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRun records the outcome and duration of one command run
func (t *Telemetry) RecordRun(ctx context.Context, command string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status),
	)
	t.Metrics.RunsTotal.Add(ctx, 1, attrs)
	t.Metrics.RunDuration.Record(ctx, time.Since(started).Seconds(), attrs)
}

// MetricsHandler serves the registry in the Prometheus exposition format
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(t.Registry, promhttp.HandlerOpts{})
}

// Shutdown flushes spans, writes the metrics textfile when configured and
// releases exporters.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if t.tracerProvider != nil {
		keep(t.tracerProvider.Shutdown(ctx))
	}
	if t.cfg.MetricsFile != "" {
		keep(t.WriteMetricsFile(t.cfg.MetricsFile))
	}
	if t.meterProvider != nil {
		keep(t.meterProvider.Shutdown(ctx))
	}
	if t.traceOut != nil {
		keep(t.traceOut.Close())
		t.traceOut = nil
	}
	return firstErr
}

// WriteMetricsFile dumps the current registry in the node_exporter textfile format
func (t *Telemetry) WriteMetricsFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	t.logger.Debug("metrics written", slog.String("path", path))
	return nil
}
