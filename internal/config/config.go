package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Backlog        int    `toml:"backlog"`
	Workers        int    `toml:"workers"`
}

type EngineConfig struct {
	Provider       string `toml:"provider"`
	URL            string `toml:"url"`
	Model          string `toml:"model"`
	Geofence       bool   `toml:"geofence"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type PipelineConfig struct {
	ExtraFields    []string `toml:"extra_fields"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	MaxImageDim    int      `toml:"max_image_dim"`
	TempDir        string   `toml:"temp_dir"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Engine   EngineConfig   `toml:"engine"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8000,
			TimeoutSeconds: 30,
			Backlog:        2048,
			Workers:        1,
		},
		Engine: EngineConfig{
			Provider:       "http",
			Geofence:       true,
			TimeoutSeconds: 120,
		},
		Pipeline: PipelineConfig{
			MaxUploadBytes: 32 << 20,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides config values from environment variables when present.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ENGINE_PROVIDER"); v != "" {
		c.Engine.Provider = v
	}
	if v := os.Getenv("ENGINE_URL"); v != "" {
		c.Engine.URL = v
	}
	if v := os.Getenv("ENGINE_MODEL"); v != "" {
		c.Engine.Model = v
	}
	if v := os.Getenv("ENGINE_GEOFENCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Engine.Geofence = b
		}
	}
	if v := os.Getenv("EXTRA_FIELDS"); v != "" {
		fields := strings.Split(v, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		c.Pipeline.ExtraFields = fields
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}
