// Package macross implements a dual moving-average trend follower.
//
// It enters when the fast SMA crosses above the slow SMA and exits on the
// reverse cross or a fixed stop below the entry price. There is no profit
// target and no time stop in this variant.
package macross

import (
	"fmt"

	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/indicator"
	"github.com/openquant/strategist/internal/strategy"
)

// Config holds the crossover strategy parameters.
type Config struct {
	FastPeriod       int
	SlowPeriod       int
	StopLossPct      float64
	PositionFraction float64 // fraction of cash per position
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		FastPeriod:       25,
		SlowPeriod:       60,
		StopLossPct:      0.02,
		PositionFraction: 0.95,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.FastPeriod <= 0 || c.SlowPeriod <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("periods must be positive"))
	}
	if c.FastPeriod >= c.SlowPeriod {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fast_period (%d) must be below slow_period (%d)", c.FastPeriod, c.SlowPeriod))
	}
	if c.StopLossPct <= 0 || c.StopLossPct >= 1 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("stop_loss_pct must be in (0,1), got %v", c.StopLossPct))
	}
	if c.PositionFraction <= 0 || c.PositionFraction > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("position_fraction must be in (0,1], got %v", c.PositionFraction))
	}
	return nil
}

// Strategy is the crossover state machine bound to one bar sequence.
type Strategy struct {
	cfg  Config
	bars []core.Bar

	cross indicator.Series

	pos *core.Position
}

// New creates a crossover strategy with the given configuration.
func New(cfg Config) (*Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Strategy{cfg: cfg}, nil
}

// FromParams builds the strategy from raw config parameters, falling back
// to defaults for anything unset.
func FromParams(params map[string]any) (strategy.Strategy, error) {
	d := DefaultConfig()
	return New(Config{
		FastPeriod:       strategy.IntParam(params, "fast_period", d.FastPeriod),
		SlowPeriod:       strategy.IntParam(params, "slow_period", d.SlowPeriod),
		StopLossPct:      strategy.FloatParam(params, "stop_loss_pct", d.StopLossPct),
		PositionFraction: strategy.FloatParam(params, "position_fraction", d.PositionFraction),
	})
}

func (s *Strategy) Name() string {
	return "ma_crossover"
}

func (s *Strategy) Description() string {
	return fmt.Sprintf("MA Crossover (%d/%d, %.1f%% stop)",
		s.cfg.FastPeriod, s.cfg.SlowPeriod, s.cfg.StopLossPct*100)
}

func (s *Strategy) Warmup() int {
	return s.cfg.SlowPeriod + 1 // crossover needs a prior ready bar
}

// Bind precomputes indicator series and resets position state.
func (s *Strategy) Bind(bars []core.Bar) error {
	s.bars = bars
	closes := core.Closes(bars)
	fast := indicator.SMA(closes, s.cfg.FastPeriod)
	slow := indicator.SMA(closes, s.cfg.SlowPeriod)
	s.cross = indicator.Crossover(fast, slow)
	s.pos = nil
	return nil
}

// Position returns the open position, or nil while flat.
func (s *Strategy) Position() *core.Position {
	return s.pos
}

// Decide evaluates the bar at index i.
func (s *Strategy) Decide(i int, acct strategy.Account) core.Decision {
	if !s.cross.Ready(i) {
		return core.NoAction
	}

	bar := s.bars[i]

	if s.pos == nil {
		if s.cross.At(i) <= 0 {
			return core.NoAction
		}
		size := int(acct.Cash * s.cfg.PositionFraction / bar.Close)
		if size <= 0 || float64(size)*bar.Close > acct.Cash {
			return core.NoAction
		}
		s.pos = &core.Position{
			EntryDate:  bar.Date,
			EntryPrice: bar.Close,
			Size:       size,
			StopPrice:  bar.Close * (1 - s.cfg.StopLossPct),
		}
		return core.Enter(size)
	}

	// Trend reversal takes priority over the stop.
	if s.cross.At(i) < 0 {
		s.pos = nil
		return core.Exit(core.ExitSignalReversal)
	}
	if bar.Close <= s.pos.StopPrice {
		s.pos = nil
		return core.Exit(core.ExitStopLoss)
	}

	return core.NoAction
}
