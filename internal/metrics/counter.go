package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by fetch and command counters.
const (
	OutcomeOK           = "ok"
	OutcomeEmpty        = "empty"
	OutcomeInvalid      = "invalid_argument"
	OutcomeNetworkError = "network_error"
	OutcomeHTTPError    = "http_error"
	OutcomeParseError   = "parse_error"
	OutcomeError        = "error"
)

// Registry holds every goodreader collector; nothing is registered globally.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	FetchRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "goodreader_fetch_requests_total",
		Help: "Total number of requests sent to the site",
	}, []string{"kind", "outcome"})

	FetchDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goodreader_fetch_duration_seconds",
		Help:    "Duration of requests sent to the site in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	RecordsParsedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "goodreader_records_parsed_total",
		Help: "Total number of records extracted from responses",
	}, []string{"kind"})

	CommandsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "goodreader_commands_total",
		Help: "Total number of CLI commands by outcome",
	}, []string{"command", "outcome"})
)

// RecordFetch counts one request and its latency.
func RecordFetch(ctx context.Context, kind, outcome string, duration time.Duration) {
	FetchRequestsTotal.WithLabelValues(kind, outcome).Inc()
	FetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	recordOTelFetch(ctx, kind, outcome, duration)
}

// RecordParsed counts records produced by the parser.
func RecordParsed(ctx context.Context, kind string, count int) {
	if count <= 0 {
		return
	}
	RecordsParsedTotal.WithLabelValues(kind).Add(float64(count))
	recordOTelParsed(ctx, kind, count)
}

// RecordCommand counts one finished CLI command.
func RecordCommand(ctx context.Context, command, outcome string) {
	CommandsTotal.WithLabelValues(command, outcome).Inc()
	recordOTelCommand(ctx, command, outcome)
}
