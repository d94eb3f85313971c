// Package indicator provides rolling numeric transforms over daily bar
// values. Every function returns a Series aligned index-for-index with its
// input; indices before the lookback window is filled are "not ready" and
// must be checked with Ready before use. Short input never errors, it only
// produces a series that is never ready.
package indicator

// Series is an indicator series aligned with its input values.
type Series struct {
	values []float64
	first  int // first index with a defined value
}

// Len returns the series length (same as the input length).
func (s Series) Len() int {
	return len(s.values)
}

// Ready reports whether the value at index i is defined.
func (s Series) Ready(i int) bool {
	return i >= s.first && i < len(s.values)
}

// At returns the value at index i. The result is meaningful only when
// Ready(i) is true.
func (s Series) At(i int) float64 {
	return s.values[i]
}

// First returns the first ready index (Len() if the series never becomes
// ready).
func (s Series) First() int {
	return s.first
}

func notReady(n int) Series {
	return Series{values: make([]float64, n), first: n}
}
