package optimize

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openquant/strategist/internal/backtest"
	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/metrics"
	"github.com/openquant/strategist/internal/strategy"
)

// ScoredResult pairs one combination's backtest with its score.
type ScoredResult struct {
	Rank   int
	Params ParamSet
	Score  float64
	Result *backtest.Result

	// index is the combination's enumeration position, used as the final
	// tie-break so ranking is stable across runs.
	index int
}

// Summary is the outcome of one optimization run. Results hold the full
// ranking, descending by score.
type Summary struct {
	RunID     string
	Strategy  string
	GridSize  int // full cartesian product
	Evaluated int // combinations backtested
	Skipped   int // structurally invalid, silently excluded
	Duration  time.Duration
	Results   []ScoredResult
}

// Best returns the top-ranked result, nil when nothing was evaluated.
func (s *Summary) Best() *ScoredResult {
	if len(s.Results) == 0 {
		return nil
	}
	return &s.Results[0]
}

// Optimizer evaluates every valid grid combination through the backtest
// engine in a bounded worker pool. Combinations are independent, so the
// pool order does not affect the final ranking.
type Optimizer struct {
	engine  *backtest.Engine
	name    string
	builder strategy.Builder
	valid   Validator
	workers int
	logger  *zap.Logger
	metrics *metrics.Registry
}

// New creates an Optimizer for one strategy family. workers <= 0 means one
// worker per CPU.
func New(engine *backtest.Engine, name string, builder strategy.Builder, workers int, logger ...*zap.Logger) *Optimizer {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Optimizer{
		engine:  engine,
		name:    name,
		builder: builder,
		valid:   FastSlowValid,
		workers: workers,
		logger:  l,
	}
}

// SetValidator replaces the structural validity predicate. nil accepts
// every combination.
func (o *Optimizer) SetValidator(v Validator) { o.valid = v }

// AttachMetrics enables Prometheus instrumentation of the run.
func (o *Optimizer) AttachMetrics(m *metrics.Registry) { o.metrics = m }

// Run evaluates the grid and returns the full ranking. Ties in score break
// by higher total return, then lower max drawdown, then enumeration order.
func (o *Optimizer) Run(ctx context.Context, bars []core.Bar, grid Grid) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()

	combos := grid.Combinations(o.valid)
	skipped := grid.Size() - len(combos)
	if o.metrics != nil {
		for i := 0; i < skipped; i++ {
			o.metrics.RecordCombination("skipped")
		}
	}
	if len(combos) == 0 {
		return nil, core.WrapError(core.ErrEmptyGrid, fmt.Errorf("grid size %d, all excluded", grid.Size()))
	}

	o.logger.Info("optimization started",
		zap.String("run_id", runID),
		zap.String("strategy", o.name),
		zap.Int("combinations", len(combos)),
		zap.Int("skipped", skipped),
		zap.Int("workers", o.workers))

	resultsChan := make(chan ScoredResult, len(combos))
	errChan := make(chan error, len(combos))
	sem := make(chan struct{}, o.workers)

	var wg sync.WaitGroup
dispatch:
	for i, ps := range combos {
		select {
		case <-ctx.Done():
			break dispatch
		default:
		}

		wg.Add(1)
		go func(idx int, ps ParamSet) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			if o.metrics != nil {
				o.metrics.WorkerStarted()
				defer o.metrics.WorkerDone()
			}

			sr, err := o.evaluate(ctx, bars, idx, ps)
			if err != nil {
				errChan <- err
				return
			}
			resultsChan <- sr
		}(i, ps)
	}
	wg.Wait()
	close(resultsChan)
	close(errChan)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for err := range errChan {
		return nil, err
	}

	ranked := make([]ScoredResult, 0, len(combos))
	for sr := range resultsChan {
		ranked = append(ranked, sr)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Result.Stats.TotalReturnPct != b.Result.Stats.TotalReturnPct {
			return a.Result.Stats.TotalReturnPct > b.Result.Stats.TotalReturnPct
		}
		if a.Result.Stats.MaxDrawdownPct != b.Result.Stats.MaxDrawdownPct {
			return a.Result.Stats.MaxDrawdownPct < b.Result.Stats.MaxDrawdownPct
		}
		return a.index < b.index
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	summary := &Summary{
		RunID:     runID,
		Strategy:  o.name,
		GridSize:  grid.Size(),
		Evaluated: len(ranked),
		Skipped:   skipped,
		Duration:  time.Since(start),
		Results:   ranked,
	}
	if o.metrics != nil {
		o.metrics.RecordOptimizeRun(summary.Duration.Seconds())
	}

	best := summary.Best()
	o.logger.Info("optimization finished",
		zap.String("run_id", runID),
		zap.Int("evaluated", summary.Evaluated),
		zap.Duration("duration", summary.Duration),
		zap.String("best_params", best.Params.String()),
		zap.Float64("best_score", best.Score))

	return summary, nil
}

func (o *Optimizer) evaluate(ctx context.Context, bars []core.Bar, idx int, ps ParamSet) (ScoredResult, error) {
	strat, err := o.builder(ps.Params())
	if err != nil {
		return ScoredResult{}, err
	}

	runStart := time.Now()
	res, err := o.engine.Run(ctx, strat, bars)
	if err != nil {
		return ScoredResult{}, err
	}

	score := Score(res.Stats)
	if o.metrics != nil {
		o.metrics.RecordCombination("scored")
		o.metrics.RecordBacktest(o.name, string(backtest.Evaluate(res.Stats).Outcome), time.Since(runStart).Seconds())
	}
	o.logger.Debug("combination evaluated",
		zap.String("params", ps.String()),
		zap.Float64("score", score),
		zap.Float64("return_pct", res.Stats.TotalReturnPct))

	return ScoredResult{Params: ps, Score: score, Result: res, index: idx}, nil
}
