// Package modelserver provides an HTTP client for the deployed accident
// classifier service.
package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/viasegura/viasegura/internal/provider/resilience"
	"github.com/viasegura/viasegura/internal/risk"
)

const (
	// ProviderName identifies the model server for logging and health tracking.
	ProviderName = "modelserver"

	// DefaultTimeout bounds a single inference call.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the model server client.
type ClientConfig struct {
	// BaseURL is the model server base URL (required).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the model server's predict endpoint. It implements
// risk.Classifier.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a model server client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Prediction    int       `json:"prediction"`
	Probabilities []float64 `json:"probabilities"`
}

// Predict sends a feature vector to the model server and returns the
// classifier decision with its class-probability pair.
func (c *Client) Predict(ctx context.Context, features []float64) (risk.Prediction, error) {
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return risk.Prediction{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return risk.Prediction{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return risk.Prediction{}, fmt.Errorf("model server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return risk.Prediction{}, fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return risk.Prediction{}, fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Probabilities) != 2 {
		return risk.Prediction{}, fmt.Errorf("model server returned %d class probabilities, want 2", len(result.Probabilities))
	}

	prediction := risk.Prediction{Class: result.Prediction}
	prediction.Probabilities[0] = result.Probabilities[0]
	prediction.Probabilities[1] = result.Probabilities[1]

	c.logger.Debug().
		Int("class", prediction.Class).
		Float64("p_accident", prediction.Probabilities[1]).
		Msg("classifier prediction")

	return prediction, nil
}
