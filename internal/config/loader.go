package config

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/ekisa-team/arniepye/internal/envvar"
	"github.com/ekisa-team/arniepye/internal/xfs"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"
)

const schemaURL = "https://arniepye.local/schema/arniepye.v1.schema.json"

//go:embed arniepye.v1.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, schemaSource)
	})

	return schema, schemaErr
}

// Load returns the defaults overlaid with the config file at path (if any)
// and with environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		loaded, err := LoadAndValidate(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadAndValidate loads the config file at path, validates it against the
// embedded schema and decodes it over the defaults.
func LoadAndValidate(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse validates raw YAML against the embedded schema and decodes it over the defaults.
func Parse(data []byte) (*Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("config: failed to compile schema: %w", err)
	}

	if err := s.Validate(raw); err != nil {
		return nil, fmt.Errorf("config: config validation failed: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal into Config struct: %w", err)
	}

	config.DownloadDir = xfs.ExpandTilde(config.DownloadDir)
	return config, nil
}

// ApplyEnv overlays environment overrides onto cfg.
// Precedence: environment variable, then config file, then defaults.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(envvar.ArnieServer); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv(envvar.ArnieDownloadDir); v != "" {
		cfg.DownloadDir = xfs.ExpandTilde(v)
	}
}
