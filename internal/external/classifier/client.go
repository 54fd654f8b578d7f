package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/pkg/config"
	"github.com/quantora/compass/pkg/dateutil"
	"github.com/quantora/compass/pkg/httputil"
	"github.com/quantora/compass/pkg/logger"
)

// Client handles communication with the sentiment classifier API.
// SSOT: classifier REST calls go through this client only.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.ClassifierConfig
	limiter    *rate.Limiter
}

// NewClient creates a new classifier API client
func NewClient(cfg config.ClassifierConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	perSec := cfg.RateLimitPerSec
	if perSec <= 0 {
		perSec = 5
	}

	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(perSec), perSec),
	}
}

// wireSignal is the classifier's payload shape. It carries the source
// timestamp; the date key is resolved from it at ingestion and never
// recomputed afterwards.
type wireSignal struct {
	contracts.Signal
	PublishedAt string `json:"published_at,omitempty"`
}

// FetchBatch retrieves all signals the classifier produced for one
// calendar day. Implements contracts.SignalSource.
func (c *Client) FetchBatch(ctx context.Context, dateKey string) ([]contracts.Signal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/signals?date=%s", c.cfg.BaseURL, url.QueryEscape(dateKey))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier API error status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Signals []wireSignal `json:"signals"`
		Count   int          `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}

	signals := make([]contracts.Signal, 0, len(result.Signals))
	for _, w := range result.Signals {
		signals = append(signals, resolveSignal(w))
	}

	c.logger.WithFields(map[string]interface{}{
		"date_key": dateKey,
		"count":    len(signals),
	}).Info("Fetched classifier signal batch")

	return signals, nil
}

// get issues an authenticated GET against the classifier API.
func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}

	return resp, nil
}

// resolveSignal fills the date key from the source timestamp when the
// classifier did not set one. Resolution happens exactly once, here.
func resolveSignal(w wireSignal) contracts.Signal {
	s := w.Signal
	if s.DateKey == "" && w.PublishedAt != "" {
		s.DateKey = dateutil.ToDateKey(w.PublishedAt)
	}
	return s
}
