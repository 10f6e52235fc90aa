package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/earnalert/internal/contracts"
)

var _ contracts.MarketDataProvider = (*Client)(nil)

// historyDepth bounds how far back the EOD lookup reaches. Twenty rows is
// enough to find any recent as-of date plus its previous trading day.
const historyDepth = 20

type priceRow struct {
	Date  string   `json:"date"`
	Close *float64 `json:"close"`
}

// historicalPrices returns EOD rows for symbol, newest first
func (c *Client) historicalPrices(ctx context.Context, symbol string) ([]priceRow, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var rows []priceRow
	if err := c.getJSON(ctx, "historical-price-eod/full", params, &rows); err != nil {
		return nil, err
	}

	if len(rows) > historyDepth {
		rows = rows[:historyDepth]
	}
	return rows, nil
}

// PriceAround returns the close on date and the close of the previous
// trading day before it. A date absent from the vendor history (holiday,
// unlisted symbol, data not yet published) is ErrDataUnavailable.
func (c *Client) PriceAround(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, decimal.Decimal, error) {
	rows, err := c.historicalPrices(ctx, symbol)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	dateStr := date.Format("2006-01-02")
	idx := -1
	for i, row := range rows {
		if row.Date == dateStr {
			idx = i
			break
		}
	}

	// Rows are newest first, so the previous trading day is the next row.
	if idx < 0 || idx+1 >= len(rows) {
		return decimal.Zero, decimal.Zero,
			fmt.Errorf("%s on %s: %w", symbol, dateStr, contracts.ErrDataUnavailable)
	}
	if rows[idx].Close == nil || rows[idx+1].Close == nil {
		return decimal.Zero, decimal.Zero,
			fmt.Errorf("%s on %s: missing close: %w", symbol, dateStr, contracts.ErrDataUnavailable)
	}

	return decimal.NewFromFloat(*rows[idx].Close), decimal.NewFromFloat(*rows[idx+1].Close), nil
}

// ClosePrice returns the close for symbol on date
func (c *Client) ClosePrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error) {
	rows, err := c.historicalPrices(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	dateStr := date.Format("2006-01-02")
	for _, row := range rows {
		if row.Date == dateStr {
			if row.Close == nil {
				break
			}
			return decimal.NewFromFloat(*row.Close), nil
		}
	}

	return decimal.Zero, fmt.Errorf("%s on %s: %w", symbol, dateStr, contracts.ErrDataUnavailable)
}
