package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
)

const maxErrorBody = 4 << 10

// HTTPModelConfig configures the remote scoring client.
type HTTPModelConfig struct {
	BaseURL string
	Name    string
	Columns []string
	Timeout time.Duration
	// Invert reports 1-p instead of p, for artifacts whose positive class is
	// "healthy".
	Invert bool
}

// HTTPModelClient calls an external model server over JSON/HTTP.
type HTTPModelClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	name       string
	columns    []string
	invert     bool
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
	Model    string             `json:"model"`
	Columns  []string           `json:"columns"`
	Values   []float64          `json:"values"`
}

type predictResponse struct {
	Probability *float64 `json:"probability"`
}

// NewHTTPModelClient creates a client for <BaseURL>/predict.
func NewHTTPModelClient(cfg HTTPModelConfig, logger *slog.Logger) (*HTTPModelClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("model base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "remote"
	}
	return &HTTPModelClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		name:       cfg.Name,
		columns:    append([]string(nil), cfg.Columns...),
		invert:     cfg.Invert,
	}, nil
}

func (c *HTTPModelClient) Name() string { return c.name }

func (c *HTTPModelClient) FeatureColumns() []string { return c.columns }

// Predict posts the vector and returns the model's probability.
func (c *HTTPModelClient) Predict(ctx context.Context, features model.FeatureVector) (float64, error) {
	body, err := json.Marshal(predictRequest{
		Model:    c.name,
		Columns:  features.Columns,
		Values:   features.Values,
		Features: features.Map(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call model server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, fmt.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode predict response: %w", err)
	}
	if out.Probability == nil {
		return 0, fmt.Errorf("predict response has no probability")
	}

	p := *out.Probability
	if c.invert {
		p = 1 - p
	}
	c.logger.Debug("model prediction",
		slog.String("model", c.name),
		slog.Float64("probability", p),
		slog.Duration("latency", time.Since(start)),
	)
	return p, nil
}
