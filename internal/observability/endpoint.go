package observability

import (
	"fmt"
	"net/url"
	"strings"
)

// signalURL appends the per-signal path (/v1/traces, /v1/metrics) to an OTLP
// HTTP endpoint unless it is already there.
func signalURL(endpoint, signalPath string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}

	p := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(p, signalPath) {
		p += signalPath
	}
	u.Path = p
	return u.String(), nil
}

// grpcTarget turns an endpoint into host:port and reports whether the
// connection should skip TLS. A bare host:port is treated as plaintext.
func grpcTarget(endpoint string) (string, bool, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if !strings.Contains(endpoint, "://") {
		if !strings.Contains(endpoint, ":") {
			return "", false, fmt.Errorf("expected host:port")
		}
		return endpoint, true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, err
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint has no host")
	}
	switch u.Scheme {
	case "http", "grpc":
		return u.Host, true, nil
	case "https", "grpcs":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}
