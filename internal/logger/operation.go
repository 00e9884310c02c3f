package logger

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"watchlist-news/internal/trace"
)

// OperationTimer ties a span to a duration measurement.
type OperationTimer struct {
	ctx    context.Context
	span   oteltrace.Span
	name   string
	start  time.Time
	fields []any
}

// StartOperation opens a span named operation; fields become span
// attributes and are repeated on the completion log line.
func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	ctx, span := trace.StartSpan(ctx, operation)
	span.SetAttributes(attributes(fields)...)

	Debug(ctx, "Operation started", append([]any{"operation", operation}, fields...)...)

	return &OperationTimer{
		ctx:    ctx,
		span:   span,
		name:   operation,
		start:  time.Now(),
		fields: fields,
	}
}

// End closes the span successfully.
func (ot *OperationTimer) End(additionalFields ...any) {
	elapsed := time.Since(ot.start)

	ot.span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))
	ot.span.SetAttributes(attributes(additionalFields)...)
	ot.span.SetStatus(codes.Ok, "")
	ot.span.End()

	Debug(ot.ctx, "Operation completed", ot.logFields(elapsed, additionalFields)...)
}

// EndWithError closes the span as failed and logs at ERROR.
func (ot *OperationTimer) EndWithError(err error, additionalFields ...any) {
	elapsed := time.Since(ot.start)

	ot.span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))
	ot.span.RecordError(err)
	ot.span.SetStatus(codes.Error, err.Error())
	ot.span.End()

	Error(ot.ctx, "Operation failed", append(ot.logFields(elapsed, additionalFields), "error", err)...)
}

// GetContext returns the context carrying the operation's span.
func (ot *OperationTimer) GetContext() context.Context {
	return ot.ctx
}

func (ot *OperationTimer) logFields(elapsed time.Duration, extra []any) []any {
	out := make([]any, 0, len(ot.fields)+len(extra)+4)
	out = append(out, "operation", ot.name)
	out = append(out, ot.fields...)
	out = append(out, "duration_ms", elapsed.Milliseconds())
	return append(out, extra...)
}

// attributes converts key/value pairs to span attributes. Values of other
// types are formatted with %v; a trailing key without a value is dropped.
func attributes(kv []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		case []string:
			attrs = append(attrs, attribute.StringSlice(key, v))
		default:
			attrs = append(attrs, attribute.String(key, fmt.Sprint(v)))
		}
	}
	return attrs
}

func recordSpanError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := oteltrace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
