// Package report renders backtest and optimization results as plain text
// and exports them as CSV artifacts.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/openquant/strategist/internal/backtest"
	"github.com/openquant/strategist/internal/optimize"
)

const (
	lineWidth    = 70
	timeRounding = 10 * time.Millisecond
)

// Backtest renders one run as a plain-text report with portfolio
// performance, risk metrics, trading statistics, and the decision
// criteria breakdown.
func Backtest(res *backtest.Result, v backtest.Verdict) string {
	var b strings.Builder
	rule := strings.Repeat("=", lineWidth)
	thin := strings.Repeat("-", lineWidth)
	s := res.Stats

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "BACKTEST RESULTS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Strategy:          %s\n", res.Strategy)
	fmt.Fprintf(&b, "Parameters:        %s\n", res.Params)
	fmt.Fprintf(&b, "Bars:              %d (%.1f years)\n", res.BarCount, float64(res.BarCount)/252)

	fmt.Fprintln(&b, "\nPORTFOLIO PERFORMANCE")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Starting Capital:  %18s\n", money(res.Config.InitialCash))
	fmt.Fprintf(&b, "Ending Capital:    %18s\n", money(res.FinalEquity))
	fmt.Fprintf(&b, "Total Return:      %17.2f%%\n", s.TotalReturnPct)
	fmt.Fprintf(&b, "Annual Return:     %17.2f%%\n", s.AnnualizedReturnPct)

	fmt.Fprintln(&b, "\nRISK METRICS")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Sharpe Ratio:      %18s\n", s.Sharpe)
	fmt.Fprintf(&b, "Max Drawdown:      %17.2f%%\n", s.MaxDrawdownPct)

	fmt.Fprintln(&b, "\nTRADING STATISTICS")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Total Trades:      %18d\n", s.TotalTrades)
	fmt.Fprintf(&b, "Winning Trades:    %18d\n", s.WinningTrades)
	fmt.Fprintf(&b, "Losing Trades:     %18d\n", s.LosingTrades)
	fmt.Fprintf(&b, "Win Rate:          %17.1f%%\n", s.WinRatePct)
	if s.WinningTrades > 0 {
		fmt.Fprintf(&b, "Avg Win:           %18s\n", money(s.AvgWin))
	} else {
		fmt.Fprintf(&b, "Avg Win:           %18s\n", "N/A")
	}
	if s.LosingTrades > 0 {
		fmt.Fprintf(&b, "Avg Loss:          %18s\n", money(s.AvgLoss))
	} else {
		fmt.Fprintf(&b, "Avg Loss:          %18s\n", "N/A")
	}
	fmt.Fprintf(&b, "Win/Loss Ratio:    %18s\n", s.WinLossRatio)
	fmt.Fprintf(&b, "Trades Per Year:   %18.1f\n", s.TradesPerYear)

	if pos := res.OpenPosition; pos != nil {
		fmt.Fprintln(&b, "\nOPEN POSITION")
		fmt.Fprintln(&b, thin)
		fmt.Fprintf(&b, "Entered %s at %s, size %d, marked to market in ending capital\n",
			pos.EntryDate.Format("2006-01-02"), money(pos.EntryPrice), pos.Size)
	}

	fmt.Fprintln(&b, "\nDECISION CRITERIA")
	fmt.Fprintln(&b, thin)
	for _, c := range v.Criteria {
		mark := "FAIL"
		if c.Met {
			mark = "PASS"
		}
		fmt.Fprintf(&b, "%-4s %s\n", mark, c.Name)
	}
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "VERDICT: %s (%d of %d criteria met)\n", v.Outcome, v.Met, len(v.Criteria))
	fmt.Fprintln(&b, rule)

	return b.String()
}

// Ranking renders the top rows of an optimization summary as a table.
func Ranking(sum *optimize.Summary, topN int) string {
	var b strings.Builder
	rule := strings.Repeat("=", lineWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "OPTIMIZATION RESULTS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Run ID:            %s\n", sum.RunID)
	fmt.Fprintf(&b, "Strategy:          %s\n", sum.Strategy)
	fmt.Fprintf(&b, "Combinations:      %d evaluated, %d excluded\n", sum.Evaluated, sum.Skipped)
	fmt.Fprintf(&b, "Duration:          %s\n\n", sum.Duration.Round(timeRounding))

	fmt.Fprintf(&b, "%4s  %7s  %8s  %7s  %7s  %7s  %6s  %s\n",
		"Rank", "Score", "Return%", "Sharpe", "MaxDD%", "WinRt%", "Trades", "Params")
	for i, r := range sum.Results {
		if topN > 0 && i >= topN {
			fmt.Fprintf(&b, "... %d more\n", len(sum.Results)-topN)
			break
		}
		st := r.Result.Stats
		fmt.Fprintf(&b, "%4d  %7.2f  %8.2f  %7s  %7.2f  %7.1f  %6d  %s\n",
			r.Rank, r.Score, st.TotalReturnPct, st.Sharpe, st.MaxDrawdownPct,
			st.WinRatePct, st.TotalTrades, r.Params)
	}

	if best := sum.Best(); best != nil {
		fmt.Fprintf(&b, "\nBest: %s (score %.2f)\n", best.Params, best.Score)
	}
	fmt.Fprintln(&b, rule)

	return b.String()
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
