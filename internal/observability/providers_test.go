package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ca-srg/goodreader/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func TestInitExportsToOTLPHTTP(t *testing.T) {
	var traceRequests atomic.Int32
	var metricRequests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/traces":
			traceRequests.Add(1)
		case "/v1/metrics":
			metricRequests.Add(1)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	shutdown, err := Init(context.Background(), &types.Config{
		OTelEnabled:              true,
		OTelServiceName:          "goodreader-test",
		OTelExporterOTLPEndpoint: server.URL,
		OTelExporterOTLPProtocol: "http/protobuf",
		OTelResourceAttributes:   "deployment.environment=test",
		OTelTracesSampler:        "always_on",
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, span := otel.Tracer("goodreader/test").Start(ctx, "goodreads.fetch")
	span.End()

	counter, err := otel.Meter("goodreader/test").Int64Counter("goodreader.test.counter", metric.WithDescription("test counter"))
	require.NoError(t, err)
	counter.Add(ctx, 1)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, shutdown(shutdownCtx))

	assert.GreaterOrEqual(t, traceRequests.Load(), int32(1), "no trace export received")
	assert.GreaterOrEqual(t, metricRequests.Load(), int32(1), "no metric export received")
}

func TestInitDisabledDoesNotSample(t *testing.T) {
	shutdown, err := Init(context.Background(), &types.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := otel.Tracer("goodreader/test").Start(context.Background(), "ignored")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled())
}

func TestInitRejectsInvalidSettings(t *testing.T) {
	shutdown, err := Init(context.Background(), &types.Config{OTelEnabled: true})
	require.Error(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
