package strategy

import (
	"github.com/openquant/strategist/internal/core"
)

// Account is the driver's view of the portfolio offered to a strategy when
// it makes a decision.
type Account struct {
	Cash   float64
	Equity float64
}

// Strategy is the per-bar decision state machine shared by all variants.
// A strategy is bound to one bar sequence at a time and owns its Position
// state; the backtest driver is agnostic to which variant it drives.
type Strategy interface {
	Name() string
	Description() string

	// Warmup returns the number of leading bars the strategy needs before
	// its indicators are ready and decisions can fire.
	Warmup() int

	// Bind precomputes indicator series for the bar sequence and resets
	// all position state. It must be called before Decide.
	Bind(bars []core.Bar) error

	// Decide evaluates the bar at index i and returns an entry, exit, or
	// no-action decision. Entries the strategy emits are always applied by
	// the driver; infeasible sizing is the strategy's responsibility to
	// reject (it sees the account state).
	Decide(i int, acct Account) core.Decision

	// Position returns the open position, or nil while flat.
	Position() *core.Position
}
