package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Provider logs the outcome of one provider fetch, at WARN when it failed.
func Provider(ctx context.Context, name string, succeeded bool, count int, fields ...any) {
	addEvent(ctx, "provider_result",
		attribute.String("provider", name),
		attribute.Bool("succeeded", succeeded),
		attribute.Int("count", count),
	)

	level := slog.LevelInfo
	if !succeeded {
		level = slog.LevelWarn
	}
	emit(ctx, level, 3, "Provider fetch finished", append([]any{
		"type", "PROVIDER",
		"provider", name,
		"succeeded", succeeded,
		"count", count,
	}, fields...))
}

// Feed logs a completed aggregation cycle.
func Feed(ctx context.Context, total, industryRelated int, fields ...any) {
	addEvent(ctx, "feed_aggregated",
		attribute.Int("total", total),
		attribute.Int("industry_related", industryRelated),
	)

	emit(ctx, slog.LevelInfo, 3, "Feed aggregated", append([]any{
		"type", "FEED",
		"total", total,
		"industry_related", industryRelated,
	}, fields...))
}

func addEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if span := oteltrace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, oteltrace.WithAttributes(attrs...))
	}
}
