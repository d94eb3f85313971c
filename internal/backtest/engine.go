// Package backtest replays a daily bar sequence through a strategy state
// machine while maintaining a portfolio ledger, then reduces the run to
// summary risk/return metrics and a pass/fail verdict.
package backtest

import (
	"context"

	"go.uber.org/zap"

	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/strategy"
)

// Engine runs strategy backtests against historical bars. It is stateless
// across runs and safe to share between goroutines.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// New creates an Engine with the given portfolio settings.
func New(cfg Config, logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: l}
}

// openTrade tracks the driver's view of an applied entry until it closes.
type openTrade struct {
	entryBar   core.Bar
	entryPrice float64
	size       int
}

// Run replays bars in order through the strategy. Bars must be strictly
// date-ordered with positive prices; malformed input is rejected before
// the simulation starts.
func (e *Engine) Run(ctx context.Context, strat strategy.Strategy, bars []core.Bar) (*Result, error) {
	if err := core.ValidateBars(bars); err != nil {
		return nil, err
	}
	if err := strat.Bind(bars); err != nil {
		return nil, err
	}

	if len(bars) < strat.Warmup() {
		e.logger.Warn("bar count below strategy warmup, no decisions will fire",
			zap.String("strategy", strat.Name()),
			zap.Int("bars", len(bars)),
			zap.Int("warmup", strat.Warmup()))
	}

	cash := e.cfg.InitialCash
	var realized float64
	var open *openTrade

	trades := make([]core.Trade, 0)
	curve := make([]core.EquityPoint, 0, len(bars))

	for i, bar := range bars {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		equity := cash
		if open != nil {
			equity += float64(open.size) * bar.Close
		}

		d := strat.Decide(i, strategy.Account{Cash: cash, Equity: equity})
		switch d.Action {
		case core.ActionEnter:
			cost := float64(d.Size) * bar.Close
			cash -= cost * (1 + e.cfg.CommissionRate)
			open = &openTrade{entryBar: bar, entryPrice: bar.Close, size: d.Size}
			e.logger.Debug("entry",
				zap.String("date", bar.Date.Format("2006-01-02")),
				zap.Float64("price", bar.Close),
				zap.Int("size", d.Size))

		case core.ActionExit:
			proceeds := float64(open.size) * bar.Close
			cash += proceeds * (1 - e.cfg.CommissionRate)

			trade := core.Trade{
				EntryDate:  open.entryBar.Date,
				EntryPrice: open.entryPrice,
				ExitDate:   bar.Date,
				ExitPrice:  bar.Close,
				Size:       open.size,
				PnL:        (bar.Close - open.entryPrice) * float64(open.size),
				PnLPct:     (bar.Close/open.entryPrice - 1) * 100,
				DaysHeld:   int(bar.Date.Sub(open.entryBar.Date).Hours() / 24),
				ExitReason: d.Reason,
			}
			realized += trade.PnL
			trades = append(trades, trade)
			open = nil
			e.logger.Debug("exit",
				zap.String("date", bar.Date.Format("2006-01-02")),
				zap.Float64("price", bar.Close),
				zap.String("reason", string(d.Reason)),
				zap.Float64("pnl", trade.PnL))
		}

		// Mark to market after applying the decision.
		equity = cash
		if open != nil {
			equity += float64(open.size) * bar.Close
		}
		curve = append(curve, core.EquityPoint{Date: bar.Date, Equity: equity})
	}

	res := &Result{
		Strategy:    strat.Name(),
		Params:      strat.Description(),
		Config:      e.cfg,
		BarCount:    len(bars),
		FinalEquity: curve[len(curve)-1].Equity,
		Cash:        cash,
		RealizedPnL: realized,
		Trades:      trades,
		EquityCurve: curve,
	}
	if pos := strat.Position(); pos != nil {
		p := *pos
		res.OpenPosition = &p
	}
	res.Stats = Analyze(res)

	return res, nil
}
