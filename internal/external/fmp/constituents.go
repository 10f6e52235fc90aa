package fmp

import "context"

type constituentRow struct {
	Symbol string `json:"symbol"`
}

// Constituents returns the current S&P 500 constituent symbols
func (c *Client) Constituents(ctx context.Context) ([]string, error) {
	var rows []constituentRow
	if err := c.getJSON(ctx, "sp500-constituent", nil, &rows); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Symbol != "" {
			symbols = append(symbols, row.Symbol)
		}
	}

	c.logger.WithField("count", len(symbols)).Debug("Fetched S&P 500 constituents")
	return symbols, nil
}
