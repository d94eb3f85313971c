package backtest

import (
	"github.com/openquant/strategist/internal/core"
)

// Config holds the portfolio settings for a run.
type Config struct {
	InitialCash    float64
	CommissionRate float64 // flat rate applied on both sides
}

// DefaultConfig returns the standard portfolio settings.
func DefaultConfig() Config {
	return Config{
		InitialCash:    100000,
		CommissionRate: 0.0001,
	}
}

// Result holds the complete backtest output. A given (bars, config) pair
// always produces an identical Result.
type Result struct {
	Strategy    string
	Params      string // human-readable parameter description
	Config      Config
	BarCount    int
	FinalEquity float64
	Cash        float64
	RealizedPnL float64

	// Trades contains closed round trips only. A position still open at
	// the final bar is reported via OpenPosition and marked to market in
	// FinalEquity.
	Trades       []core.Trade
	EquityCurve  []core.EquityPoint
	OpenPosition *core.Position

	Stats Stats
}
