package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openquant/strategist/internal/backtest"
	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/optimize"
)

func sampleResult() *backtest.Result {
	res := &backtest.Result{
		Strategy:    "ma_crossover",
		Params:      "fast=25 slow=60",
		Config:      backtest.Config{InitialCash: 100000, CommissionRate: 0.0001},
		BarCount:    504,
		FinalEquity: 131000,
		Trades: []core.Trade{
			{
				EntryDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				ExitDate:   time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC),
				EntryPrice: 100, ExitPrice: 110, Size: 50,
				PnL: 500, PnLPct: 10, DaysHeld: 7,
				ExitReason: core.ExitTarget,
			},
			{
				EntryDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				ExitDate:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
				EntryPrice: 120, ExitPrice: 117.6, Size: 40,
				PnL: -96, PnLPct: -2, DaysHeld: 3,
				ExitReason: core.ExitStopLoss,
			},
		},
		EquityCurve: []core.EquityPoint{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Equity: 100000},
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Equity: 110000},
			{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Equity: 131000},
		},
	}
	res.Stats = backtest.Analyze(res)
	return res
}

func TestBacktest_Sections(t *testing.T) {
	res := sampleResult()
	out := Backtest(res, backtest.Evaluate(res.Stats))

	for _, want := range []string{
		"BACKTEST RESULTS",
		"PORTFOLIO PERFORMANCE",
		"RISK METRICS",
		"TRADING STATISTICS",
		"DECISION CRITERIA",
		"VERDICT:",
		"ma_crossover",
		"$100000.00",
		"$131000.00",
		"Total Trades:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "OPEN POSITION") {
		t.Error("no open position expected")
	}
}

func TestBacktest_OpenPositionSection(t *testing.T) {
	res := sampleResult()
	res.OpenPosition = &core.Position{
		EntryDate:  time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice: 150,
		Size:       30,
	}

	out := Backtest(res, backtest.Evaluate(res.Stats))
	if !strings.Contains(out, "OPEN POSITION") || !strings.Contains(out, "2024-12-01") {
		t.Error("open position section missing")
	}
}

func TestBacktest_UnavailableMetricsRenderNA(t *testing.T) {
	res := &backtest.Result{
		Strategy:    "ma_crossover",
		Config:      backtest.Config{InitialCash: 100000},
		BarCount:    10,
		FinalEquity: 100000,
		EquityCurve: []core.EquityPoint{
			{Equity: 100000}, {Equity: 100000},
		},
	}
	res.Stats = backtest.Analyze(res)

	out := Backtest(res, backtest.Evaluate(res.Stats))
	if !strings.Contains(out, "N/A") {
		t.Error("undefined ratios must render as N/A")
	}
}

func sampleSummary() *optimize.Summary {
	mk := func(ret, dd float64, trades int) *backtest.Result {
		return &backtest.Result{
			Config: backtest.Config{InitialCash: 100000},
			Stats: backtest.Stats{
				TotalReturnPct: ret,
				MaxDrawdownPct: dd,
				TotalTrades:    trades,
				Sharpe:         backtest.ValidRatio(0.8),
			},
		}
	}
	return &optimize.Summary{
		RunID:     "11111111-2222-3333-4444-555555555555",
		Strategy:  "ma_crossover",
		GridSize:  4,
		Evaluated: 3,
		Skipped:   1,
		Duration:  1500 * time.Millisecond,
		Results: []optimize.ScoredResult{
			{Rank: 1, Params: optimize.ParamSet{"fast_period": 10, "slow_period": 40}, Score: 30, Result: mk(35, 10, 25)},
			{Rank: 2, Params: optimize.ParamSet{"fast_period": 20, "slow_period": 40}, Score: 20, Result: mk(25, 12, 22)},
			{Rank: 3, Params: optimize.ParamSet{"fast_period": 25, "slow_period": 60}, Score: 5, Result: mk(8, 30, 4)},
		},
	}
}

func TestRanking(t *testing.T) {
	sum := sampleSummary()
	out := Ranking(sum, 10)

	for _, want := range []string{
		"OPTIMIZATION RESULTS",
		sum.RunID,
		"3 evaluated, 1 excluded",
		"fast_period=10 slow_period=40",
		"Best:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ranking missing %q", want)
		}
	}
}

func TestRanking_TruncatesToTopN(t *testing.T) {
	out := Ranking(sampleSummary(), 2)

	if strings.Contains(out, "fast_period=25 slow_period=60") {
		t.Error("row beyond top N should be truncated")
	}
	if !strings.Contains(out, "... 1 more") {
		t.Error("expected truncation marker")
	}
}

func TestWriteTradesCSV(t *testing.T) {
	res := sampleResult()
	path := filepath.Join(t.TempDir(), "trades.csv")

	if err := WriteTradesCSV(res.Trades, path); err != nil {
		t.Fatalf("WriteTradesCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 { // header + 2 trades
		t.Fatalf("rows = %d, want 3", len(records))
	}
	if records[0][0] != "entry_date" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][8] != "target" {
		t.Errorf("exit_reason = %q, want target", records[1][8])
	}
	if records[2][5] != "-96" {
		t.Errorf("pnl = %q, want -96", records[2][5])
	}
}

func TestWriteRankingCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.csv")

	if err := WriteRankingCSV(sampleSummary(), path); err != nil {
		t.Fatalf("WriteRankingCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 { // header + 3 rows
		t.Fatalf("rows = %d, want 4", len(records))
	}
	if records[1][0] != "1" || records[1][2] != "fast_period=10 slow_period=40" {
		t.Errorf("first row = %v", records[1])
	}
}
