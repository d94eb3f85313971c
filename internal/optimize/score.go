package optimize

import "github.com/openquant/strategist/internal/backtest"

// Score collapses a run's metrics into one comparable number. Each term is
// conditional partial credit: a threshold miss contributes zero, never a
// penalty. An unavailable sharpe contributes nothing.
func Score(s backtest.Stats) float64 {
	var score float64
	if s.TotalReturnPct > 20 {
		score += 40 * (s.TotalReturnPct / 100)
	}
	if s.Sharpe.Exceeds(0.5) {
		score += 30 * (s.Sharpe.Value / 2)
	}
	if s.WinRatePct > 45 {
		score += 20 * (s.WinRatePct / 100)
	}
	if s.MaxDrawdownPct < 25 {
		score += 10 * ((25 - s.MaxDrawdownPct) / 25)
	}
	return score
}
