package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	s := SMA([]float64{1, 2, 3, 4, 5}, 3)

	if s.Len() != 5 {
		t.Fatalf("Len = %d, want 5", s.Len())
	}
	for i := 0; i < 2; i++ {
		if s.Ready(i) {
			t.Errorf("index %d should not be ready", i)
		}
	}

	want := []float64{2, 3, 4}
	for i, w := range want {
		idx := i + 2
		if !s.Ready(idx) {
			t.Fatalf("index %d should be ready", idx)
		}
		if !almostEqual(s.At(idx), w) {
			t.Errorf("At(%d) = %v, want %v", idx, s.At(idx), w)
		}
	}
}

func TestSMA_ShortInput(t *testing.T) {
	s := SMA([]float64{1, 2}, 5)
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	for i := 0; i < s.Len(); i++ {
		if s.Ready(i) {
			t.Errorf("index %d should not be ready for short input", i)
		}
	}
}

func TestRollingMax(t *testing.T) {
	s := RollingMax([]float64{3, 1, 4, 1, 5, 9, 2}, 3)

	want := map[int]float64{2: 4, 3: 4, 4: 5, 5: 9, 6: 9}
	for idx, w := range want {
		if !s.Ready(idx) {
			t.Fatalf("index %d should be ready", idx)
		}
		if s.At(idx) != w {
			t.Errorf("At(%d) = %v, want %v", idx, s.At(idx), w)
		}
	}
	if s.Ready(1) {
		t.Error("index 1 should not be ready")
	}
}

func TestRSI_AllGains(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	s := RSI(values, 14)

	if s.Ready(13) {
		t.Error("index 13 should not be ready for window 14")
	}
	if !s.Ready(14) {
		t.Fatal("index 14 should be ready")
	}
	// Monotonically rising prices have zero average loss
	if s.At(14) != 100 {
		t.Errorf("At(14) = %v, want 100", s.At(14))
	}
	if s.At(19) != 100 {
		t.Errorf("At(19) = %v, want 100", s.At(19))
	}
}

func TestRSI_Bounded(t *testing.T) {
	values := []float64{100, 102, 101, 103, 99, 104, 98, 105, 97, 106, 96, 107, 95, 108, 94, 109, 93}
	s := RSI(values, 14)

	for i := s.First(); i < s.Len(); i++ {
		v := s.At(i)
		if v < 0 || v > 100 {
			t.Errorf("At(%d) = %v out of [0,100]", i, v)
		}
	}
}

func TestRSI_WilderSmoothing(t *testing.T) {
	// Two bars after the seed: avg = (prev*(w-1) + current) / w
	values := []float64{10, 11, 10, 11, 10, 12}
	s := RSI(values, 4)

	// Seed over deltas {+1,-1,+1,-1}: avgGain=0.5, avgLoss=0.5 -> RSI 50
	if !almostEqual(s.At(4), 50) {
		t.Errorf("seed RSI = %v, want 50", s.At(4))
	}
	// Next delta +2: avgGain=(0.5*3+2)/4=0.875, avgLoss=(0.5*3)/4=0.375
	// RS=7/3, RSI=70
	if !almostEqual(s.At(5), 70) {
		t.Errorf("smoothed RSI = %v, want 70", s.At(5))
	}
}

func TestCrossover(t *testing.T) {
	// fast crosses above slow at index 2, below at index 4
	fast := Series{values: []float64{1, 2, 4, 4, 2}, first: 0}
	slow := Series{values: []float64{3, 3, 3, 3, 3}, first: 0}

	s := Crossover(fast, slow)

	if s.Ready(0) {
		t.Error("index 0 should not be ready (no prior bar)")
	}
	want := map[int]float64{1: 0, 2: 1, 3: 0, 4: -1}
	for idx, w := range want {
		if !s.Ready(idx) {
			t.Fatalf("index %d should be ready", idx)
		}
		if s.At(idx) != w {
			t.Errorf("At(%d) = %v, want %v", idx, s.At(idx), w)
		}
	}
}

func TestCrossover_TouchThenCross(t *testing.T) {
	// fast equal to slow then above: still a cross (prior <=, current >)
	fast := Series{values: []float64{3, 4}, first: 0}
	slow := Series{values: []float64{3, 3}, first: 0}

	s := Crossover(fast, slow)
	if s.At(1) != 1 {
		t.Errorf("At(1) = %v, want 1", s.At(1))
	}
}

func TestCrossover_NoEdgeWithoutCrossing(t *testing.T) {
	// fast stays above slow: the sign is positive but there is no edge
	fast := Series{values: []float64{5, 6, 7}, first: 0}
	slow := Series{values: []float64{3, 3, 3}, first: 0}

	s := Crossover(fast, slow)
	for i := 1; i < 3; i++ {
		if s.At(i) != 0 {
			t.Errorf("At(%d) = %v, want 0", i, s.At(i))
		}
	}
}

func TestCrossover_RespectsInputReadiness(t *testing.T) {
	fast := SMA([]float64{1, 2, 3, 4, 5, 6}, 2)
	slow := SMA([]float64{1, 2, 3, 4, 5, 6}, 4)

	s := Crossover(fast, slow)
	// slow first ready at 3, so crossover first ready at 4
	if s.First() != 4 {
		t.Errorf("First = %d, want 4", s.First())
	}
}
