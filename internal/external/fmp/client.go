package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/wonny/earnalert/pkg/config"
	"github.com/wonny/earnalert/pkg/httputil"
	"github.com/wonny/earnalert/pkg/logger"
)

// Client handles communication with the Financial Modeling Prep stable API.
// It is the system's market data and earnings calendar provider.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

// RateLimitError is returned on an HTTP 429 from FMP
type RateLimitError struct {
	Endpoint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("fmp rate limit exceeded on %s", e.Endpoint)
}

// NewClient creates a new FMP client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	rps := cfg.FMP.RateLimit
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.FMP.BaseURL,
		apiKey:     cfg.FMP.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// getJSON performs a rate-limited GET against an FMP endpoint and decodes
// the JSON response into dest.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return fmt.Errorf("fmp request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Endpoint: endpoint}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fmp %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fmp %s: read body: %w", endpoint, err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("fmp %s: decode response: %w", endpoint, err)
	}

	return nil
}
