// Package breakout implements a trend-confirmation breakout strategy.
//
// Entry requires four conditions on the same bar: a close above the prior
// bar's rolling high, a volume surge over the average, a close above the
// long trend SMA, and RSI inside a momentum band. Exits are checked in
// order: stop-loss, profit target, then a time stop that is extended once
// for profitable trades.
package breakout

import (
	"fmt"

	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/indicator"
	"github.com/openquant/strategist/internal/strategy"
)

const (
	// Minimum profit (percent) a trade must show at the time stop to earn
	// the extended hold.
	timeStopProfitPct = 1.0
)

// Config holds the breakout strategy parameters.
type Config struct {
	LookbackHigh     int     // rolling high period for the breakout test
	VolumeLookback   int     // average volume period
	VolumeThreshold  float64 // surge multiple over average volume
	SMAPeriod        int     // long trend filter period
	RSIPeriod        int
	RSILower         float64
	RSIUpper         float64
	StopLossPct      float64
	TargetPct        float64
	MaxHoldDays      int
	PositionFraction float64 // fraction of portfolio value per position
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		LookbackHigh:     30,
		VolumeLookback:   20,
		VolumeThreshold:  1.2,
		SMAPeriod:        100,
		RSIPeriod:        14,
		RSILower:         30,
		RSIUpper:         75,
		StopLossPct:      0.02,
		TargetPct:        0.06,
		MaxHoldDays:      7,
		PositionFraction: 0.30,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.LookbackHigh <= 0 || c.VolumeLookback <= 0 || c.SMAPeriod <= 0 || c.RSIPeriod <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("all lookback periods must be positive"))
	}
	if c.RSILower >= c.RSIUpper {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("rsi_lower (%v) must be below rsi_upper (%v)", c.RSILower, c.RSIUpper))
	}
	if c.StopLossPct <= 0 || c.StopLossPct >= 1 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("stop_loss_pct must be in (0,1), got %v", c.StopLossPct))
	}
	if c.TargetPct <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("target_pct must be positive, got %v", c.TargetPct))
	}
	if c.MaxHoldDays <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("max_hold_days must be positive, got %d", c.MaxHoldDays))
	}
	if c.PositionFraction <= 0 || c.PositionFraction > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("position_fraction must be in (0,1], got %v", c.PositionFraction))
	}
	return nil
}

// Strategy is the breakout state machine bound to one bar sequence.
type Strategy struct {
	cfg  Config
	bars []core.Bar

	highest indicator.Series // rolling max of highs
	volAvg  indicator.Series // average volume
	sma     indicator.Series // trend filter
	rsi     indicator.Series

	pos *core.Position
}

// New creates a breakout strategy with the given configuration.
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
		LookbackHigh:     strategy.IntParam(params, "lookback_high", d.LookbackHigh),
		VolumeLookback:   strategy.IntParam(params, "volume_lookback", d.VolumeLookback),
		VolumeThreshold:  strategy.FloatParam(params, "volume_threshold", d.VolumeThreshold),
		SMAPeriod:        strategy.IntParam(params, "sma_period", d.SMAPeriod),
		RSIPeriod:        strategy.IntParam(params, "rsi_period", d.RSIPeriod),
		RSILower:         strategy.FloatParam(params, "rsi_lower", d.RSILower),
		RSIUpper:         strategy.FloatParam(params, "rsi_upper", d.RSIUpper),
		StopLossPct:      strategy.FloatParam(params, "stop_loss_pct", d.StopLossPct),
		TargetPct:        strategy.FloatParam(params, "target_pct", d.TargetPct),
		MaxHoldDays:      strategy.IntParam(params, "max_hold_days", d.MaxHoldDays),
		PositionFraction: strategy.FloatParam(params, "position_fraction", d.PositionFraction),
	})
}

func (s *Strategy) Name() string {
	return "momentum_breakout"
}

func (s *Strategy) Description() string {
	return fmt.Sprintf("Trend-confirmation breakout (%dd high, %.1fx volume, %dd SMA, RSI %g-%g)",
		s.cfg.LookbackHigh, s.cfg.VolumeThreshold, s.cfg.SMAPeriod, s.cfg.RSILower, s.cfg.RSIUpper)
}

func (s *Strategy) Warmup() int {
	w := s.cfg.LookbackHigh + 1 // breakout needs the prior bar's rolling high
	if s.cfg.VolumeLookback > w {
		w = s.cfg.VolumeLookback
	}
	if s.cfg.SMAPeriod > w {
		w = s.cfg.SMAPeriod
	}
	if s.cfg.RSIPeriod+1 > w {
		w = s.cfg.RSIPeriod + 1
	}
	return w
}

// Bind precomputes indicator series and resets position state.
func (s *Strategy) Bind(bars []core.Bar) error {
	s.bars = bars
	s.highest = indicator.RollingMax(core.Highs(bars), s.cfg.LookbackHigh)
	s.volAvg = indicator.SMA(core.Volumes(bars), s.cfg.VolumeLookback)
	s.sma = indicator.SMA(core.Closes(bars), s.cfg.SMAPeriod)
	s.rsi = indicator.RSI(core.Closes(bars), s.cfg.RSIPeriod)
	s.pos = nil
	return nil
}

// Position returns the open position, or nil while flat.
func (s *Strategy) Position() *core.Position {
	return s.pos
}

// Decide evaluates the bar at index i.
func (s *Strategy) Decide(i int, acct strategy.Account) core.Decision {
	if s.pos == nil {
		return s.checkEntry(i, acct)
	}
	return s.checkExit(i)
}

func (s *Strategy) checkEntry(i int, acct strategy.Account) core.Decision {
	// The breakout test compares against the previous bar's rolling high to
	// avoid look-ahead, so a prior bar must exist and be ready.
	if i == 0 || !s.highest.Ready(i-1) || !s.volAvg.Ready(i) || !s.sma.Ready(i) || !s.rsi.Ready(i) {
		return core.NoAction
	}

	bar := s.bars[i]

	breakout := bar.Close > s.highest.At(i-1)
	volumeSurge := float64(bar.Volume) > s.volAvg.At(i)*s.cfg.VolumeThreshold
	uptrend := bar.Close > s.sma.At(i)
	rsiHealthy := s.cfg.RSILower < s.rsi.At(i) && s.rsi.At(i) < s.cfg.RSIUpper

	if !breakout || !volumeSurge || !uptrend || !rsiHealthy {
		return core.NoAction
	}

	size := int(acct.Equity * s.cfg.PositionFraction / bar.Close)
	if size <= 0 || float64(size)*bar.Close > acct.Cash {
		// Sizing infeasible for this bar; re-evaluated fresh next bar.
		return core.NoAction
	}

	s.pos = &core.Position{
		EntryDate:   bar.Date,
		EntryPrice:  bar.Close,
		Size:        size,
		StopPrice:   bar.Close * (1 - s.cfg.StopLossPct),
		TargetPrice: bar.Close * (1 + s.cfg.TargetPct),
	}
	return core.Enter(size)
}

func (s *Strategy) checkExit(i int) core.Decision {
	bar := s.bars[i]

	if bar.Close <= s.pos.StopPrice {
		s.pos = nil
		return core.Exit(core.ExitStopLoss)
	}

	if bar.Close >= s.pos.TargetPrice {
		s.pos = nil
		return core.Exit(core.ExitTarget)
	}

	daysHeld := s.pos.DaysHeld(bar.Date)
	if daysHeld >= s.cfg.MaxHoldDays {
		if s.pos.PnLPct(bar.Close) <= timeStopProfitPct {
			// Cut dead trades at the first deadline.
			s.pos = nil
			return core.Exit(core.ExitTimeStop)
		}
		// Profitable at the deadline: hold on until the extended limit,
		// where the exit is unconditional.
		if daysHeld >= 2*s.cfg.MaxHoldDays {
			s.pos = nil
			return core.Exit(core.ExitExtendedTimeStop)
		}
	}

	return core.NoAction
}
