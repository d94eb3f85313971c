package backtest

import (
	"fmt"
	"math"

	"github.com/openquant/strategist/internal/core"
)

const tradingDaysPerYear = 252

// Ratio is a metric that may be undefined. Division-by-zero cases degrade
// to an unavailable value instead of NaN, and scoring treats unavailable
// as failing its threshold.
type Ratio struct {
	Value float64
	Valid bool
}

// ValidRatio wraps a defined value.
func ValidRatio(v float64) Ratio {
	return Ratio{Value: v, Valid: true}
}

// String renders the ratio for reports, "N/A" when unavailable.
func (r Ratio) String() string {
	if !r.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// Exceeds reports whether the ratio is defined and above the threshold.
func (r Ratio) Exceeds(threshold float64) bool {
	return r.Valid && r.Value > threshold
}

// Stats holds performance statistics for one completed run.
type Stats struct {
	TotalReturnPct      float64
	AnnualizedReturnPct float64
	MaxDrawdownPct      float64
	Sharpe              Ratio // annualized mean/volatility of daily returns

	TotalTrades   int // closed trades only
	WinningTrades int
	LosingTrades  int
	WinRatePct    float64
	AvgWin        float64
	AvgLoss       float64
	WinLossRatio  Ratio
	TradesPerYear float64
}

// Analyze reduces a completed run's trade log and equity curve to summary
// metrics.
func Analyze(r *Result) Stats {
	s := Stats{}
	if r.BarCount == 0 || r.Config.InitialCash == 0 {
		return s
	}

	years := float64(r.BarCount) / tradingDaysPerYear

	s.TotalReturnPct = (r.FinalEquity/r.Config.InitialCash - 1) * 100
	s.AnnualizedReturnPct = s.TotalReturnPct / years
	s.MaxDrawdownPct = maxDrawdown(r.EquityCurve) * 100
	s.Sharpe = sharpeRatio(r.EquityCurve)

	var winPnL, lossPnL float64
	for _, t := range r.Trades {
		if t.IsWin() {
			s.WinningTrades++
			winPnL += t.PnL
		} else {
			s.LosingTrades++
			lossPnL += t.PnL
		}
	}
	s.TotalTrades = len(r.Trades)
	if s.TotalTrades > 0 {
		s.WinRatePct = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	}
	if s.WinningTrades > 0 {
		s.AvgWin = winPnL / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = lossPnL / float64(s.LosingTrades)
	}
	if s.LosingTrades > 0 && s.AvgLoss != 0 {
		s.WinLossRatio = ValidRatio(math.Abs(s.AvgWin / s.AvgLoss))
	}
	s.TradesPerYear = float64(s.TotalTrades) / years

	return s
}

// maxDrawdown finds the largest peak-to-trough decline of the equity curve
// using the running high-water mark.
func maxDrawdown(curve []core.EquityPoint) float64 {
	var maxDD float64
	var peak float64

	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// sharpeRatio computes the annualized mean/volatility ratio of daily
// equity returns. Unavailable with fewer than two return observations or
// zero volatility.
func sharpeRatio(curve []core.EquityPoint) Ratio {
	if len(curve) < 3 {
		return Ratio{}
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, curve[i].Equity/prev-1)
	}
	if len(returns) < 2 {
		return Ratio{}
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))
	if stdDev == 0 {
		return Ratio{}
	}

	return ValidRatio(mean / stdDev * math.Sqrt(tradingDaysPerYear))
}
