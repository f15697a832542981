package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wildlens/gateway/internal/gateway"
)

// HTTPEngine talks to a remote prediction service over its JSON contract:
// POST {instances: [...]} → {predictions: [...]}.
type HTTPEngine struct {
	url      string
	model    string
	geofence bool
	client   *http.Client
}

func NewHTTPEngine(url, model string, geofence bool, timeout time.Duration) *HTTPEngine {
	return &HTTPEngine{
		url:      strings.TrimRight(url, "/"),
		model:    model,
		geofence: geofence,
		client:   &http.Client{Timeout: timeout},
	}
}

type engineRequest struct {
	Model     string             `json:"model,omitempty"`
	Geofence  bool               `json:"geofence"`
	Instances []gateway.Instance `json:"instances"`
}

type engineResponse struct {
	Predictions []gateway.Result `json:"predictions"`
}

func (e *HTTPEngine) Predict(ctx context.Context, instances []gateway.Instance) ([]gateway.Result, error) {
	payload, err := json.Marshal(engineRequest{
		Model:     e.model,
		Geofence:  e.geofence,
		Instances: instances,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("engine returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out engineResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode engine response: %w", err)
	}
	return out.Predictions, nil
}
