package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/openquant/strategist/internal/backtest"
	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/optimize"
)

// WriteTradesCSV exports a run's closed trades.
func WriteTradesCSV(trades []core.Trade, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"entry_date", "exit_date", "entry_price", "exit_price", "size",
		"pnl", "pnl_pct", "days_held", "exit_reason",
	}); err != nil {
		return err
	}
	for _, t := range trades {
		if err := w.Write([]string{
			t.EntryDate.Format("2006-01-02"),
			t.ExitDate.Format("2006-01-02"),
			formatF(t.EntryPrice), formatF(t.ExitPrice),
			strconv.Itoa(t.Size),
			formatF(t.PnL), formatF(t.PnLPct),
			strconv.Itoa(t.DaysHeld),
			string(t.ExitReason),
		}); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteRankingCSV exports the full optimization ranking.
func WriteRankingCSV(sum *optimize.Summary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"rank", "score", "params", "total_return_pct", "annualized_return_pct",
		"sharpe", "max_drawdown_pct", "win_rate_pct", "trades", "verdict",
	}); err != nil {
		return err
	}
	for _, r := range sum.Results {
		st := r.Result.Stats
		sharpe := ""
		if st.Sharpe.Valid {
			sharpe = formatF(st.Sharpe.Value)
		}
		if err := w.Write([]string{
			strconv.Itoa(r.Rank),
			formatF(r.Score),
			r.Params.String(),
			formatF(st.TotalReturnPct),
			formatF(st.AnnualizedReturnPct),
			sharpe,
			formatF(st.MaxDrawdownPct),
			formatF(st.WinRatePct),
			strconv.Itoa(st.TotalTrades),
			string(backtest.Evaluate(st).Outcome),
		}); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
