package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// bookMetrics holds the singleton instance
	bookMetrics *BookMetrics
	// meter is the global meter for book metrics
	meter = otel.GetMeterProvider().Meter(instrumentationName)
)

// BookMetrics holds metrics for matching operations
type BookMetrics struct {
	// Total number of fills produced, by taker order type
	fillsTotal metric.Int64Counter
	// Total quantity traded across all fills
	volumeTraded metric.Float64Counter
}

// GetBookMetrics returns the BookMetrics singleton
func GetBookMetrics() *BookMetrics {
	if bookMetrics == nil {
		fillsTotal, err := meter.Int64Counter(
			"book.fills.total",
			metric.WithDescription("Total number of fills produced by matching"),
			metric.WithUnit("{fill}"),
		)
		if err != nil {
			return &BookMetrics{}
		}

		volumeTraded, err := meter.Float64Counter(
			"book.volume.traded",
			metric.WithDescription("Total quantity traded across all fills"),
		)
		if err != nil {
			return &BookMetrics{fillsTotal: fillsTotal}
		}

		bookMetrics = &BookMetrics{
			fillsTotal:   fillsTotal,
			volumeTraded: volumeTraded,
		}
	}

	return bookMetrics
}

// RecordFills accounts one match event against the counters
func (m *BookMetrics) RecordFills(ctx context.Context, orderType string, count int64, quantity float64) {
	if count == 0 {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("order.type", orderType),
	}
	if m.fillsTotal != nil {
		m.fillsTotal.Add(ctx, count, metric.WithAttributes(attrs...))
	}
	if m.volumeTraded != nil {
		m.volumeTraded.Add(ctx, quantity, metric.WithAttributes(attrs...))
	}
}
