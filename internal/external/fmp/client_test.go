package fmp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/pkg/config"
	"github.com/wonny/earnalert/pkg/httputil"
	"github.com/wonny/earnalert/pkg/logger"
)

// newTestClient points a Client at a stub FMP server
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		FMP: config.FMPConfig{
			APIKey:    "test-key",
			BaseURL:   server.URL,
			RateLimit: 1000, // no throttling in tests
		},
	}
	log := logger.NewNop()

	return NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log)
}

func TestConstituents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sp500-constituent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`[{"symbol":"AAPL"},{"symbol":"MSFT"},{"symbol":""}]`))
	})

	symbols, err := client.Constituents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestEarningsSymbols(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/earnings-calendar", r.URL.Path)
		assert.Equal(t, "2025-12-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-12-01", r.URL.Query().Get("to"))
		w.Write([]byte(`[
			{"symbol":"AAPL","date":"2025-12-01"},
			{"symbol":"AAPL","date":"2025-12-01"},
			{"symbol":"NVDA","date":"2025-12-01"}
		]`))
	})

	set, err := client.EarningsSymbols(context.Background(), time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "AAPL")
	assert.Contains(t, set, "NVDA")
}

func TestPriceAround(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/historical-price-eod/full", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		// Newest first, with a weekend gap before 2025-12-01
		w.Write([]byte(`[
			{"date":"2025-12-02","close":125.00},
			{"date":"2025-12-01","close":123.45},
			{"date":"2025-11-28","close":140.00}
		]`))
	})

	closePx, prevPx, err := client.PriceAround(context.Background(), "AAPL", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "123.45", closePx.StringFixed(2))
	assert.Equal(t, "140.00", prevPx.StringFixed(2))
}

func TestPriceAround_MissingDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"date":"2025-12-01","close":123.45}]`))
	})

	// Holiday: the requested date is not in the history
	_, _, err := client.PriceAround(context.Background(), "AAPL", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC))
	assert.True(t, contracts.IsDataUnavailable(err))
}

func TestPriceAround_NoPreviousDay(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The as-of date is the oldest row, so no previous close exists
		w.Write([]byte(`[{"date":"2025-12-01","close":123.45}]`))
	})

	_, _, err := client.PriceAround(context.Background(), "AAPL", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, contracts.IsDataUnavailable(err))
}

func TestPriceAround_NullClose(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"date":"2025-12-01","close":null},
			{"date":"2025-11-28","close":140.00}
		]`))
	})

	_, _, err := client.PriceAround(context.Background(), "AAPL", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, contracts.IsDataUnavailable(err))
}

func TestClosePrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"date":"2025-12-10","close":110.00},
			{"date":"2025-12-09","close":112.00}
		]`))
	})

	px, err := client.ClosePrice(context.Background(), "AAPL", time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "110.00", px.StringFixed(2))

	_, err = client.ClosePrice(context.Background(), "AAPL", time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC))
	assert.True(t, contracts.IsDataUnavailable(err))
}

func TestRateLimitError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Constituents(context.Background())
	var rle *RateLimitError
	assert.True(t, errors.As(err, &rle))
}

func TestUnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Constituents(context.Background())
	assert.Error(t, err)
}
