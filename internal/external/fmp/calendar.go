package fmp

import (
	"context"
	"net/url"
	"time"
)

type calendarRow struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
}

// EarningsSymbols returns the set of symbols with an earnings announcement
// on the given date.
func (c *Client) EarningsSymbols(ctx context.Context, date time.Time) (map[string]struct{}, error) {
	dateStr := date.Format("2006-01-02")

	params := url.Values{}
	params.Set("from", dateStr)
	params.Set("to", dateStr)

	var rows []calendarRow
	if err := c.getJSON(ctx, "earnings-calendar", params, &rows); err != nil {
		return nil, err
	}

	symbols := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.Symbol != "" {
			symbols[row.Symbol] = struct{}{}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  dateStr,
		"count": len(symbols),
	}).Debug("Fetched earnings calendar")

	return symbols, nil
}
