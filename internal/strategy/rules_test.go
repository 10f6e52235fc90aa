package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/pkg/config"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func configStrategyFixture(min, max, stop string, days int) config.StrategyConfig {
	return config.StrategyConfig{
		EntryReturnMin:    min,
		EntryReturnMax:    max,
		StopLossThreshold: stop,
		MaxHoldingDays:    days,
	}
}

func TestEntryQualifies_Boundaries(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		ret    string
		wantIn bool
	}{
		{"exactly -5 percent is in", "-0.05", true},
		{"exactly -30 percent is in", "-0.30", true},
		{"just above -5 percent is out", "-0.0499", false},
		{"just below -30 percent is out", "-0.3001", false},
		{"middle of band is in", "-0.15", true},
		{"zero return is out", "0", false},
		{"positive return is out", "0.08", false},
		{"total wipeout is out", "-0.95", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIn, cfg.EntryQualifies(d(tt.ret)))
		})
	}
}

func TestEarningsReturn_ExactDecimal(t *testing.T) {
	// 123.45 / 140.00 - 1 must compare against the band without float noise
	ret := EarningsReturn(d("123.45"), d("140.00"))

	assert.Equal(t, "-11.82", ret.Mul(decimal.NewFromInt(100)).StringFixed(2))
	assert.True(t, DefaultConfig().EntryQualifies(ret))
}

func TestEarningsReturn_FivePercentBoundaryExact(t *testing.T) {
	// 95 / 100 - 1 == -0.05 exactly; a float comparison could go either way
	ret := EarningsReturn(d("95"), d("100"))

	assert.True(t, ret.Equal(d("-0.05")))
	assert.True(t, DefaultConfig().EntryQualifies(ret))
}

func TestEvaluateExit_StopLoss(t *testing.T) {
	cfg := DefaultConfig()
	pos := &contracts.Position{
		Symbol:     "AAPL",
		EntryDate:  time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice: d("123.45"),
		Status:     contracts.PositionStatusOpen,
	}
	asOf := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	// 111.11 / 123.45 - 1 ≈ -9.98%, stays open
	decision := cfg.EvaluateExit(pos, d("111.11"), asOf)
	assert.Nil(t, decision)

	// 110.00 / 123.45 - 1 ≈ -10.90%, stop-loss fires
	decision = cfg.EvaluateExit(pos, d("110.00"), asOf)
	require.NotNil(t, decision)
	assert.Equal(t, contracts.ExitReasonStopLoss, decision.Reason)
	assert.Equal(t, 9, decision.HoldingDays)
}

func TestEvaluateExit_StopLossBoundaryInclusive(t *testing.T) {
	cfg := DefaultConfig()
	pos := &contracts.Position{
		Symbol:     "MSFT",
		EntryDate:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		EntryPrice: d("100"),
		Status:     contracts.PositionStatusOpen,
	}
	asOf := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	// Exactly -10.00% closes the position
	decision := cfg.EvaluateExit(pos, d("90"), asOf)
	require.NotNil(t, decision)
	assert.Equal(t, contracts.ExitReasonStopLoss, decision.Reason)
	assert.True(t, decision.PnL.Equal(d("-0.1")))

	// -9.99% does not
	decision = cfg.EvaluateExit(pos, d("90.01"), asOf)
	assert.Nil(t, decision)
}

func TestEvaluateExit_TimeExit(t *testing.T) {
	cfg := DefaultConfig()
	pos := &contracts.Position{
		Symbol:     "NVDA",
		EntryDate:  time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		EntryPrice: d("100"),
		Status:     contracts.PositionStatusOpen,
	}

	// Day 49, small loss: no exit
	decision := cfg.EvaluateExit(pos, d("98"), pos.EntryDate.AddDate(0, 0, 49))
	assert.Nil(t, decision)

	// Day 50: time exit fires regardless of pnl sign
	decision = cfg.EvaluateExit(pos, d("105"), pos.EntryDate.AddDate(0, 0, 50))
	require.NotNil(t, decision)
	assert.Equal(t, contracts.ExitReasonTimeExit, decision.Reason)
	assert.Equal(t, 50, decision.HoldingDays)

	// Day 51 (missed data on day 50): still a plain time exit
	decision = cfg.EvaluateExit(pos, d("105"), pos.EntryDate.AddDate(0, 0, 51))
	require.NotNil(t, decision)
	assert.Equal(t, contracts.ExitReasonTimeExit, decision.Reason)
	assert.Equal(t, 51, decision.HoldingDays)
}

func TestEvaluateExit_StopLossWinsOverTimeExit(t *testing.T) {
	cfg := DefaultConfig()
	pos := &contracts.Position{
		Symbol:     "AMD",
		EntryDate:  time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		EntryPrice: d("100"),
		Status:     contracts.PositionStatusOpen,
	}

	// Day 60 with -20% pnl: both rules fire, stop-loss is recorded
	decision := cfg.EvaluateExit(pos, d("80"), pos.EntryDate.AddDate(0, 0, 60))
	require.NotNil(t, decision)
	assert.Equal(t, contracts.ExitReasonStopLoss, decision.Reason)
}

func TestHoldingDays_CalendarDays(t *testing.T) {
	pos := &contracts.Position{
		EntryDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, 0, pos.HoldingDays(time.Date(2025, 12, 1, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, pos.HoldingDays(time.Date(2025, 12, 2, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, 9, pos.HoldingDays(time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)))
}

func TestConfigFrom(t *testing.T) {
	cfg, err := ConfigFrom(configStrategyFixture("-0.30", "-0.05", "-0.10", 50))
	require.NoError(t, err)
	assert.True(t, cfg.EntryReturnMin.Equal(d("-0.3")))
	assert.True(t, cfg.EntryReturnMax.Equal(d("-0.05")))
	assert.True(t, cfg.StopLossThreshold.Equal(d("-0.1")))
	assert.Equal(t, 50, cfg.MaxHoldingDays)

	_, err = ConfigFrom(configStrategyFixture("abc", "-0.05", "-0.10", 50))
	assert.Error(t, err)
}
