// Package optimize runs an exhaustive grid search over strategy
// parameters, scoring each combination's backtest and returning the full
// ranking.
package optimize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Axis is one parameter dimension with its ordered candidate values.
type Axis struct {
	Name   string
	Values []float64
}

// Grid is an ordered list of axes. The search space is the cartesian
// product of all axis values.
type Grid struct {
	Axes []Axis
}

// Size returns the cartesian product size before validity filtering.
func (g Grid) Size() int {
	if len(g.Axes) == 0 {
		return 0
	}
	n := 1
	for _, a := range g.Axes {
		n *= len(a.Values)
	}
	return n
}

// ParamSet is one combination drawn from the grid.
type ParamSet map[string]float64

// Params converts the set into the loose form strategy builders accept.
func (ps ParamSet) Params() map[string]any {
	m := make(map[string]any, len(ps))
	for k, v := range ps {
		m[k] = v
	}
	return m
}

// String renders the combination with sorted keys, e.g.
// "fast_period=10 slow_period=30".
func (ps ParamSet) String() string {
	keys := make([]string, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, strconv.FormatFloat(ps[k], 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// Validator rejects structurally invalid combinations. Rejected
// combinations are excluded from the search, not scored as zero.
type Validator func(ParamSet) bool

// FastSlowValid rejects combinations where fast_period >= slow_period.
// Combinations missing either axis pass.
func FastSlowValid(ps ParamSet) bool {
	fast, okFast := ps["fast_period"]
	slow, okSlow := ps["slow_period"]
	if okFast && okSlow {
		return fast < slow
	}
	return true
}

// Combinations expands the grid in axis order, dropping combinations the
// validator rejects. A nil validator accepts everything. The returned
// order is deterministic: the last axis varies fastest.
func (g Grid) Combinations(valid Validator) []ParamSet {
	if g.Size() == 0 {
		return nil
	}

	out := make([]ParamSet, 0, g.Size())
	idx := make([]int, len(g.Axes))

	for {
		ps := make(ParamSet, len(g.Axes))
		for i, a := range g.Axes {
			ps[a.Name] = a.Values[idx[i]]
		}
		if valid == nil || valid(ps) {
			out = append(out, ps)
		}

		// Advance the odometer, last axis fastest.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(g.Axes[i].Values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}
