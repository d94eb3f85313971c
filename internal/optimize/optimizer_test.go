package optimize

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/openquant/strategist/internal/backtest"
	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/strategy"
	"github.com/openquant/strategist/internal/strategy/macross"
)

func testBars() []core.Bar {
	closes := []float64{10, 10, 10, 20, 20, 5, 6, 8, 12, 14, 13, 11, 15, 18, 16}
	bars := make([]core.Bar, len(closes))
	for i, c := range closes {
		bars[i] = core.Bar{
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return bars
}

func testGrid() Grid {
	return Grid{Axes: []Axis{
		{Name: "fast_period", Values: []float64{2, 3}},
		{Name: "slow_period", Values: []float64{3, 4}},
	}}
}

func newTestOptimizer(workers int) *Optimizer {
	engine := backtest.New(backtest.Config{InitialCash: 100000, CommissionRate: 0.0001})
	return New(engine, "ma_crossover", macross.FromParams, workers)
}

func TestRun_EvaluatesValidCombinations(t *testing.T) {
	o := newTestOptimizer(2)

	sum, err := o.Run(context.Background(), testBars(), testGrid())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// (2,3), (2,4), (3,4) are valid; (3,3) is excluded.
	if sum.GridSize != 4 || sum.Evaluated != 3 || sum.Skipped != 1 {
		t.Errorf("grid/evaluated/skipped = %d/%d/%d, want 4/3/1", sum.GridSize, sum.Evaluated, sum.Skipped)
	}
	if sum.RunID == "" {
		t.Error("expected a run ID")
	}
	for _, r := range sum.Results {
		if r.Params["fast_period"] >= r.Params["slow_period"] {
			t.Errorf("excluded combination appears in ranking: %v", r.Params)
		}
	}
}

func TestRun_RankingOrder(t *testing.T) {
	o := newTestOptimizer(4)

	sum, err := o.Run(context.Background(), testBars(), testGrid())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i := 1; i < len(sum.Results); i++ {
		if sum.Results[i].Score > sum.Results[i-1].Score {
			t.Errorf("ranking not descending at %d: %v > %v", i, sum.Results[i].Score, sum.Results[i-1].Score)
		}
	}
	for i, r := range sum.Results {
		if r.Rank != i+1 {
			t.Errorf("Results[%d].Rank = %d, want %d", i, r.Rank, i+1)
		}
	}
	if best := sum.Best(); best == nil || best.Rank != 1 {
		t.Error("Best() must return the rank-1 result")
	}
}

func TestRun_Deterministic(t *testing.T) {
	bars := testBars()
	grid := testGrid()

	run := func() []string {
		sum, err := newTestOptimizer(4).Run(context.Background(), bars, grid)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		order := make([]string, len(sum.Results))
		for i, r := range sum.Results {
			order[i] = fmt.Sprintf("%s score=%.6f", r.Params, r.Score)
		}
		return order
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ranking differs between identical runs at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestRun_AllCombinationsExcluded(t *testing.T) {
	o := newTestOptimizer(1)
	grid := Grid{Axes: []Axis{
		{Name: "fast_period", Values: []float64{60}},
		{Name: "slow_period", Values: []float64{25}},
	}}

	_, err := o.Run(context.Background(), testBars(), grid)
	if !errors.Is(err, core.ErrEmptyGrid) {
		t.Errorf("err = %v, want ErrEmptyGrid", err)
	}
}

func TestRun_BuilderErrorPropagates(t *testing.T) {
	engine := backtest.New(backtest.DefaultConfig())
	broken := func(params map[string]any) (strategy.Strategy, error) {
		return nil, errors.New("bad params")
	}
	o := New(engine, "broken", broken, 2)
	o.SetValidator(nil)

	grid := Grid{Axes: []Axis{{Name: "x", Values: []float64{1, 2}}}}
	if _, err := o.Run(context.Background(), testBars(), grid); err == nil {
		t.Error("expected builder error to propagate")
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	o := newTestOptimizer(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Run(ctx, testBars(), testGrid()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
