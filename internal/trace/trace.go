// Package trace owns the process tracer provider. Spans are exported to
// stderr so the CLI feed on stdout stays readable.
package trace

import (
	"context"
	"io"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "watchlist-news"

var (
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
)

// Options configures the exporter.
type Options struct {
	Enabled     bool
	Pretty      bool
	SampleRatio float64
	Writer      io.Writer
}

// OptionsFromEnv reads LOG_TRACING_ENABLED, LOG_TRACE_PRETTY and
// LOG_TRACE_SAMPLE_RATIO.
func OptionsFromEnv() Options {
	ratio, err := strconv.ParseFloat(os.Getenv("LOG_TRACE_SAMPLE_RATIO"), 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	return Options{
		Enabled:     os.Getenv("LOG_TRACING_ENABLED") != "false",
		Pretty:      os.Getenv("LOG_TRACE_PRETTY") == "true",
		SampleRatio: ratio,
	}
}

func Init() error {
	return InitWithOptions(OptionsFromEnv())
}

func InitWithOptions(opts Options) error {
	enabled = opts.Enabled
	if !enabled {
		return nil
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	exportOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if opts.Pretty {
		exportOpts = append(exportOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exportOpts...)
	if err != nil {
		return err
	}

	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))

	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	)
	otel.SetTracerProvider(provider)
	tracer = provider.Tracer(serviceName)
	return nil
}

// Shutdown flushes batched spans.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// StartSpan is a no-op returning the parent span when tracing is off.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

func Enabled() bool {
	return enabled
}

// GetTraceFields returns hex ids of the span in ctx.
func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
