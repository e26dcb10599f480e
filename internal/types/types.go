package types

import (
	"fmt"
	"strings"
	"time"
)

// Book represents one parsed book record returned from a lookup
type Book struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	ISBN          string   `json:"isbn,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	RatingsCount  *int     `json:"ratings_count,omitempty"`
	PublishedYear *int     `json:"published_year,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	URL           string   `json:"url,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// AuthorLine joins the authors for display
func (b *Book) AuthorLine() string {
	if len(b.Authors) == 0 {
		return "Unknown Author"
	}
	return strings.Join(b.Authors, ", ")
}

// RatingLine renders rating and ratings count, or an empty string when the book has no rating
func (b *Book) RatingLine() string {
	if b.Rating == nil {
		return ""
	}
	line := fmt.Sprintf("%.2f", *b.Rating)
	if b.RatingsCount != nil {
		line += fmt.Sprintf(" (%d ratings)", *b.RatingsCount)
	}
	return line
}

// Genre represents a genre (shelf) on the site
type Genre struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	BookCount   *int   `json:"book_count,omitempty"`
}

// GenreDetail bundles a genre with the books listed on its shelf
type GenreDetail struct {
	Genre Genre  `json:"genre"`
	Books []Book `json:"books"`
}

// ErrorKind classifies a lookup failure
type ErrorKind string

const (
	ErrorKindInvalidArgument ErrorKind = "invalid_argument"
	ErrorKindNetwork         ErrorKind = "network_error"
	ErrorKindHTTP            ErrorKind = "http_error"
	ErrorKindParse           ErrorKind = "parse_error"
	// EmptyResult is a valid zero-match outcome, not a failure
	ErrorKindEmptyResult ErrorKind = "empty_result"
)

// Config represents the goodreader configuration
type Config struct {
	// Site access
	BaseURL      string        `json:"base_url" yaml:"base_url" env:"GOODREADER_BASE_URL,default=https://www.goodreads.com"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout" env:"GOODREADER_TIMEOUT,default=15s"`
	UserAgent    string        `json:"user_agent" yaml:"user_agent" env:"GOODREADER_USER_AGENT,default=Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/124.0 Safari/537.36"`
	RateLimit    float64       `json:"rate_limit" yaml:"rate_limit" env:"GOODREADER_RATE_LIMIT,default=2.0"`
	RateBurst    int           `json:"rate_burst" yaml:"rate_burst" env:"GOODREADER_RATE_BURST,default=1"`
	MaxBodyBytes int64         `json:"max_body_bytes" yaml:"max_body_bytes" env:"GOODREADER_MAX_BODY_BYTES,default=8388608"`

	// Listing
	GenrePages       int `json:"genre_pages" yaml:"genre_pages" env:"GOODREADER_GENRE_PAGES,default=10"`
	ShelfPages       int `json:"shelf_pages" yaml:"shelf_pages" env:"GOODREADER_SHELF_PAGES,default=1"`
	PageSize         int `json:"page_size" yaml:"page_size" env:"GOODREADER_PAGE_SIZE,default=20"`
	DescriptionWidth int `json:"description_width" yaml:"description_width" env:"GOODREADER_DESCRIPTION_WIDTH,default=240"`

	// Logging and metrics
	LogLevel    string `json:"log_level" yaml:"log_level" env:"GOODREADER_LOG_LEVEL,default=warn"`
	LogFormat   string `json:"log_format" yaml:"log_format" env:"GOODREADER_LOG_FORMAT,default=text"`
	MetricsFile string `json:"metrics_file" yaml:"metrics_file" env:"GOODREADER_METRICS_FILE"`

	// OpenTelemetry configuration
	OTelEnabled              bool    `json:"otel_enabled" yaml:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" yaml:"otel_service_name" env:"OTEL_SERVICE_NAME,default=goodreader"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" yaml:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" yaml:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" yaml:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" yaml:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" yaml:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}
