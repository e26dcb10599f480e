package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes the registry to path in the Prometheus text exposition format.
// The file is replaced atomically so a node exporter textfile collector can pick it up.
func WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics: failed to create directory for %s: %w", path, err)
	}

	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("metrics: failed to write textfile %s: %w", path, err)
	}
	return nil
}
