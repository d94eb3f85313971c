package backtest

// Outcome is the overall verdict for a run.
type Outcome string

const (
	VerdictPass     Outcome = "PASS"
	VerdictMarginal Outcome = "MARGINAL"
	VerdictFail     Outcome = "FAIL"
)

// Criterion is one pass/fail check against the run's metrics.
type Criterion struct {
	Name string
	Met  bool
}

// Verdict is the decision-criteria evaluation of a single run: PASS with
// at least 4 of 5 criteria met, MARGINAL with exactly 3, FAIL otherwise.
type Verdict struct {
	Outcome  Outcome
	Met      int
	Criteria []Criterion
}

// Evaluate applies the fixed acceptance thresholds to a run's metrics.
// It is a pure function of Stats.
func Evaluate(s Stats) Verdict {
	criteria := []Criterion{
		{Name: "profitability (total return >20%)", Met: s.TotalReturnPct > 20},
		{Name: "risk-adjusted returns (sharpe >0.5)", Met: s.Sharpe.Exceeds(0.5)},
		{Name: "drawdown control (max DD <25%)", Met: s.MaxDrawdownPct < 25},
		{Name: "win rate (>=45%)", Met: s.WinRatePct >= 45},
		{Name: "sample size (>=20 trades)", Met: s.TotalTrades >= 20},
	}

	met := 0
	for _, c := range criteria {
		if c.Met {
			met++
		}
	}

	v := Verdict{Met: met, Criteria: criteria}
	switch {
	case met >= 4:
		v.Outcome = VerdictPass
	case met == 3:
		v.Outcome = VerdictMarginal
	default:
		v.Outcome = VerdictFail
	}
	return v
}
