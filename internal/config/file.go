package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable that points at a YAML config file.
const EnvConfigPath = "GOODREADER_CONFIG"

const fileSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "base_url":          {"type": "string", "pattern": "^https?://"},
    "timeout":           {"type": "string"},
    "user_agent":        {"type": "string", "minLength": 1},
    "rate_limit":        {"type": "number", "minimum": 0},
    "rate_burst":        {"type": "integer", "minimum": 1},
    "max_body_bytes":    {"type": "integer", "minimum": 1},
    "genre_pages":       {"type": "integer", "minimum": 1},
    "shelf_pages":       {"type": "integer", "minimum": 1},
    "page_size":         {"type": "integer", "minimum": 1},
    "description_width": {"type": "integer", "minimum": 0},
    "log_level":         {"type": "string", "enum": ["trace", "debug", "info", "warn", "warning", "error"]},
    "log_format":        {"type": "string", "enum": ["text", "json"]},
    "metrics_file":      {"type": "string"},
    "otel_enabled":                {"type": "boolean"},
    "otel_service_name":           {"type": "string"},
    "otel_exporter_otlp_endpoint": {"type": "string"},
    "otel_exporter_otlp_protocol": {"type": "string", "enum": ["http/protobuf", "grpc"]},
    "otel_resource_attributes":    {"type": "string"},
    "otel_traces_sampler":         {"type": "string"},
    "otel_traces_sampler_arg":     {"type": "number", "minimum": 0}
  }
}`

var fileSchemaLoader = gojsonschema.NewStringLoader(fileSchema)

// resolveConfigPath returns the config file to read and whether the caller asked for it explicitly.
func resolveConfigPath(path string) (string, bool, error) {
	if path = strings.TrimSpace(path); path != "" {
		return path, true, nil
	}
	if fromEnv := strings.TrimSpace(os.Getenv(EnvConfigPath)); fromEnv != "" {
		return fromEnv, true, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		// No home directory; run on env and defaults alone.
		return "", false, nil
	}
	return filepath.Join(dir, "goodreader", "config.yaml"), false, nil
}

func applyFile(config *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	if err := validateFile(raw); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	overlay := *config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	keepExplicitEnv(&overlay, config)
	*config = overlay

	return nil
}

func validateFile(raw map[string]interface{}) error {
	result, err := gojsonschema.Validate(fileSchemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}
	return errors.New(strings.Join(messages, "; "))
}

// keepExplicitEnv copies back every field whose variable is set in the environment.
func keepExplicitEnv(dst, fromEnv *Config) {
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(fromEnv).Elem()
	t := dv.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("env"), ",")
		if name == "" {
			continue
		}
		if _, ok := os.LookupEnv(name); ok {
			dv.Field(i).Set(sv.Field(i))
		}
	}
}
