package goodreads

import (
	"github.com/ca-srg/goodreader/internal/metrics"
	"github.com/ca-srg/goodreader/internal/types"
	"go.opentelemetry.io/otel"
)

var goodreadsTracer = otel.Tracer("goodreader/goodreads")

// Outcome maps an error to the metrics outcome label.
func Outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	switch KindOf(err) {
	case types.ErrorKindEmptyResult:
		return metrics.OutcomeEmpty
	case types.ErrorKindInvalidArgument:
		return metrics.OutcomeInvalid
	case types.ErrorKindNetwork:
		return metrics.OutcomeNetworkError
	case types.ErrorKindHTTP:
		return metrics.OutcomeHTTPError
	case types.ErrorKindParse:
		return metrics.OutcomeParseError
	default:
		return metrics.OutcomeError
	}
}
