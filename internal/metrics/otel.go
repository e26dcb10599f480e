package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	otelMetricsOnce sync.Once
	fetchCounter    metric.Int64Counter
	fetchLatency    metric.Float64Histogram
	recordsCounter  metric.Int64Counter
	commandCounter  metric.Int64Counter
)

// initOTelMetrics creates the instruments from the global meter provider.
// observability.Init must run first for the instruments to export anything.
func initOTelMetrics() {
	otelMetricsOnce.Do(func() {
		meter := otel.Meter("goodreader/metrics")

		var err error
		fetchCounter, err = meter.Int64Counter(
			"goodreader.fetch.requests",
			metric.WithDescription("Requests sent to the site"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			logrus.WithError(err).Warn("metrics: failed to create fetch counter")
		}

		fetchLatency, err = meter.Float64Histogram(
			"goodreader.fetch.duration",
			metric.WithDescription("Request latency"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			logrus.WithError(err).Warn("metrics: failed to create fetch latency histogram")
		}

		recordsCounter, err = meter.Int64Counter(
			"goodreader.records.parsed",
			metric.WithDescription("Records extracted from responses"),
			metric.WithUnit("{record}"),
		)
		if err != nil {
			logrus.WithError(err).Warn("metrics: failed to create records counter")
		}

		commandCounter, err = meter.Int64Counter(
			"goodreader.commands",
			metric.WithDescription("CLI commands by outcome"),
			metric.WithUnit("{command}"),
		)
		if err != nil {
			logrus.WithError(err).Warn("metrics: failed to create command counter")
		}
	})
}

func recordOTelFetch(ctx context.Context, kind, outcome string, duration time.Duration) {
	initOTelMetrics()
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	)
	if fetchCounter != nil {
		fetchCounter.Add(ctx, 1, attrs)
	}
	if fetchLatency != nil {
		fetchLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func recordOTelParsed(ctx context.Context, kind string, count int) {
	initOTelMetrics()
	if recordsCounter != nil {
		recordsCounter.Add(ctx, int64(count), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func recordOTelCommand(ctx context.Context, command, outcome string) {
	initOTelMetrics()
	if commandCounter != nil {
		commandCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("outcome", outcome),
		))
	}
}

// ResetOTelForTesting drops the cached instruments so the next record call
// binds to whatever meter provider is installed.
func ResetOTelForTesting() {
	otelMetricsOnce = sync.Once{}
	fetchCounter = nil
	fetchLatency = nil
	recordsCounter = nil
	commandCounter = nil
}
