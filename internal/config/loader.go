package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mlcprobe/internal/common/fsutil"
)

// Defaults used when neither a config file, an env var nor a flag sets a value.
const (
	DefaultEndpoint  = "http://127.0.0.1:8000"
	DefaultModel     = "./dist/TinyLlama-1.1B-Chat-MLC/"
	DefaultPrompt    = "What is the capital of France?"
	DefaultAddr      = "127.0.0.1:8000"
	DefaultTransport = "http"
	DefaultLogLevel  = "info"
)

// Config holds runtime parameters for the probe and the mock server.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Endpoint       string   `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	Model          string   `json:"model" yaml:"model" toml:"model"`
	Prompt         string   `json:"prompt" yaml:"prompt" toml:"prompt"`
	TimeoutSeconds int      `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	Transport      string   `json:"transport" yaml:"transport" toml:"transport"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	Addr           string   `json:"addr" yaml:"addr" toml:"addr"`
	CORSEnabled    bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins    []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse toml %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv overlays MLCPROBE_* environment variables onto unset fields.
func (c Config) FromEnv() Config {
	if v := os.Getenv("MLCPROBE_ENDPOINT"); v != "" && c.Endpoint == "" {
		c.Endpoint = v
	}
	if v := os.Getenv("MLCPROBE_ADDR"); v != "" && c.Addr == "" {
		c.Addr = v
	}
	if v := os.Getenv("MLCPROBE_LOG_LEVEL"); v != "" && c.LogLevel == "" {
		c.LogLevel = v
	}
	return c
}

// WithDefaults fills every unspecified field.
func (c Config) WithDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.Transport == "" {
		c.Transport = DefaultTransport
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.TimeoutSeconds < 0 {
		c.TimeoutSeconds = 0
	}
	return c
}
