package observability

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ca-srg/goodreader/internal/types"
)

const (
	defaultServiceName    = "goodreader"
	protocolHTTP          = "http/protobuf"
	protocolGRPC          = "grpc"
	serviceNameKey        = "service.name"
	defaultExportInterval = 10 * time.Second
)

// Settings are the OpenTelemetry options resolved from the root config.
type Settings struct {
	Enabled        bool
	ServiceName    string
	Endpoint       string
	Protocol       string
	Attributes     map[string]string
	Sampler        string
	SamplerArg     float64
	ExportInterval time.Duration
}

// SettingsFrom reads and validates the OTel part of cfg.
func SettingsFrom(cfg *types.Config) (*Settings, error) {
	if cfg == nil {
		return nil, fmt.Errorf("observability: nil configuration")
	}

	attrs, err := parseAttributes(cfg.OTelResourceAttributes)
	if err != nil {
		return nil, fmt.Errorf("observability: OTEL_RESOURCE_ATTRIBUTES: %w", err)
	}

	s := &Settings{
		Enabled:     cfg.OTelEnabled,
		ServiceName: strings.TrimSpace(cfg.OTelServiceName),
		Endpoint:    strings.TrimSpace(cfg.OTelExporterOTLPEndpoint),
		Protocol:    strings.ToLower(strings.TrimSpace(cfg.OTelExporterOTLPProtocol)),
		Attributes:  attrs,
		Sampler:     strings.ToLower(strings.TrimSpace(cfg.OTelTracesSampler)),
		SamplerArg:  cfg.OTelTracesSamplerArg,
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) normalize() error {
	if s.ServiceName == "" {
		s.ServiceName = defaultServiceName
	}
	if s.Protocol == "" {
		s.Protocol = protocolHTTP
	}
	if s.Sampler == "" {
		s.Sampler = "always_on"
	}
	if s.ExportInterval <= 0 {
		s.ExportInterval = defaultExportInterval
	}
	if s.Attributes == nil {
		s.Attributes = make(map[string]string)
	}
	if _, ok := s.Attributes[serviceNameKey]; !ok {
		s.Attributes[serviceNameKey] = s.ServiceName
	}

	if !s.Enabled {
		return nil
	}

	if s.Endpoint == "" {
		return fmt.Errorf("observability: OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is true")
	}
	switch s.Protocol {
	case protocolHTTP:
		u, err := url.Parse(s.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("observability: endpoint %q must be an http(s) URL for %s", s.Endpoint, protocolHTTP)
		}
	case protocolGRPC:
		if _, _, err := grpcTarget(s.Endpoint); err != nil {
			return fmt.Errorf("observability: endpoint %q: %w", s.Endpoint, err)
		}
	default:
		return fmt.Errorf("observability: unsupported OTLP protocol %q", s.Protocol)
	}

	switch s.Sampler {
	case "always_on", "always_off", "parentbased_always_on":
	case "traceidratio":
		if s.SamplerArg <= 0 || s.SamplerArg > 1 {
			return fmt.Errorf("observability: OTEL_TRACES_SAMPLER_ARG must be in (0, 1] for traceidratio")
		}
	default:
		return fmt.Errorf("observability: unsupported sampler %q", s.Sampler)
	}
	return nil
}

// parseAttributes reads "k1=v1,k2=v2".
func parseAttributes(raw string) (map[string]string, error) {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid attribute %q", pair)
		}
		attrs[key] = strings.TrimSpace(value)
	}
	return attrs, nil
}
