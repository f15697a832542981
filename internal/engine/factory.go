package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/wildlens/gateway/internal/config"
	"github.com/wildlens/gateway/internal/gateway"
)

// NewEngine builds the configured prediction engine client.
func NewEngine(cfg config.EngineConfig) (gateway.Engine, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("engine provider 'http' requires a url")
		}
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		return NewHTTPEngine(cfg.URL, cfg.Model, cfg.Geofence, timeout), nil

	case "stub":
		return NewStubEngine(cfg.Model), nil

	default:
		return nil, fmt.Errorf("unsupported engine provider: %s", cfg.Provider)
	}
}
