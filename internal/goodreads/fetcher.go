package goodreads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ca-srg/goodreader/internal/logger"
	"github.com/ca-srg/goodreader/internal/metrics"
	"github.com/ca-srg/goodreader/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultMaxBodyBytes = 8 << 20
	maxBodyBytesLimit   = 1 << 30
	maxRedirects        = 10
)

// FetcherConfig holds the process-lifetime settings of the fetcher.
type FetcherConfig struct {
	Timeout      time.Duration
	UserAgent    string
	RateLimit    float64
	RateBurst    int
	MaxBodyBytes int64
}

// FetcherConfigFrom picks the fetcher settings out of the root config.
func FetcherConfigFrom(cfg *types.Config) FetcherConfig {
	return FetcherConfig{
		Timeout:      cfg.Timeout,
		UserAgent:    cfg.UserAgent,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Response is a successful (2xx) reply.
type Response struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
}

// Fetcher performs one GET per target, spaced by a rate limiter. It never retries.
type Fetcher struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	config      FetcherConfig
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the underlying client. Its Timeout is overwritten by the config.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// NewFetcher builds a fetcher from cfg.
func NewFetcher(cfg FetcherConfig, opts ...FetcherOption) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.MaxBodyBytes > maxBodyBytesLimit {
		cfg.MaxBodyBytes = maxBodyBytesLimit
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 1
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	f := &Fetcher{
		httpClient:  &http.Client{},
		rateLimiter: rate.NewLimiter(limit, cfg.RateBurst),
		config:      cfg,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.httpClient.Timeout = cfg.Timeout
	if f.httpClient.CheckRedirect == nil {
		f.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	}

	return f
}

// Fetch issues a GET for target. Not-found replies come back as an EmptyResult error,
// other non-2xx replies as HttpError, and transport failures as NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, target Target) (*Response, error) {
	kind := string(target.Query.Kind())

	ctx, span := goodreadsTracer.Start(ctx, "goodreads.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("goodreads.kind", kind),
		attribute.String("http.url", target.URL),
	)

	start := time.Now()
	resp, err := f.fetch(ctx, target)
	metrics.RecordFetch(ctx, kind, Outcome(err), time.Since(start))

	if resp != nil {
		span.SetAttributes(
			attribute.Int("http.status_code", resp.Status),
			attribute.Int("http.response_size", len(resp.Body)),
		)
	}
	if err != nil {
		var lookupErr *LookupError
		if errors.As(err, &lookupErr) && lookupErr.Status > 0 {
			span.SetAttributes(attribute.Int("http.status_code", lookupErr.Status))
		}
		if IsEmptyResult(err) {
			span.SetAttributes(attribute.Bool("goodreads.empty", true))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(KindOf(err)))
		}
		return nil, err
	}

	return resp, nil
}

func (f *Fetcher) fetch(ctx context.Context, target Target) (*Response, error) {
	log := logger.For(ctx).WithField("url", target.URL)
	defer logger.Track(ctx, "fetch "+string(target.Query.Kind()))()

	if err := f.rateLimiter.Wait(ctx); err != nil {
		return nil, ClassifyTransportError(err, target.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return nil, newError(types.ErrorKindInvalidArgument, err, "cannot build request for %s", target.URL)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if target.Query.Kind() == KindSearchQuick {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	}

	log.Debug("sending request")
	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return nil, ClassifyTransportError(err, target.URL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes+1))
	if err != nil {
		return nil, ClassifyTransportError(err, target.URL)
	}

	log = log.WithField("status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug("non-success status")
		return nil, ClassifyHTTPStatus(resp.StatusCode, target.URL, body)
	}

	if int64(len(body)) > f.config.MaxBodyBytes {
		return nil, &LookupError{
			Kind:    types.ErrorKindHTTP,
			Message: fmt.Sprintf("response larger than %d bytes", f.config.MaxBodyBytes),
			Status:  resp.StatusCode,
			URL:     target.URL,
		}
	}

	log.WithField("bytes", len(body)).Debug("response received")
	return &Response{
		URL:         resp.Request.URL.String(),
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
