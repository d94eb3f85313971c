package indicator

// SMA calculates a Simple Moving Average over the trailing window values.
// Ready from index window-1.
func SMA(values []float64, window int) Series {
	if window <= 0 || len(values) < window {
		return notReady(len(values))
	}

	out := make([]float64, len(values))

	var sum float64
	for i := 0; i < window; i++ {
		sum += values[i]
	}
	out[window-1] = sum / float64(window)

	// Rolling calculation
	for i := window; i < len(values); i++ {
		sum = sum - values[i-window] + values[i]
		out[i] = sum / float64(window)
	}

	return Series{values: out, first: window - 1}
}

// RollingMax calculates the maximum over the trailing window values.
// Ready from index window-1.
func RollingMax(values []float64, window int) Series {
	if window <= 0 || len(values) < window {
		return notReady(len(values))
	}

	out := make([]float64, len(values))
	for i := window - 1; i < len(values); i++ {
		m := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] > m {
				m = values[j]
			}
		}
		out[i] = m
	}

	return Series{values: out, first: window - 1}
}

// RSI calculates Wilder's Relative Strength Index. The average gain and
// loss are seeded with a simple average over the first window changes, then
// smoothed with factor 1/window. RSI = 100 when the average loss is zero.
// Ready from index window.
func RSI(values []float64, window int) Series {
	if window <= 0 || len(values) < window+1 {
		return notReady(len(values))
	}

	out := make([]float64, len(values))

	var gain, loss float64
	for i := 1; i <= window; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	avgGain := gain / float64(window)
	avgLoss := loss / float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	for i := window + 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		var g, l float64
		if delta > 0 {
			g = delta
		} else {
			l = -delta
		}
		avgGain = (avgGain*float64(window-1) + g) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + l) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}

	return Series{values: out, first: window}
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Crossover detects the bar at which fast crosses slow. Values are +1 where
// fast moves from <=slow to >slow, -1 where it moves from >=slow to <slow,
// and 0 otherwise. The crossing edge is detected from the prior bar's
// relative order, not the current sign alone. Ready one bar after both
// inputs are ready.
func Crossover(fast, slow Series) Series {
	n := fast.Len()
	if slow.Len() < n {
		n = slow.Len()
	}

	first := fast.First()
	if slow.First() > first {
		first = slow.First()
	}
	first++ // need a prior bar to compare against

	if first >= n {
		return notReady(n)
	}

	out := make([]float64, n)
	for i := first; i < n; i++ {
		prevFast, prevSlow := fast.At(i-1), slow.At(i-1)
		currFast, currSlow := fast.At(i), slow.At(i)
		switch {
		case prevFast <= prevSlow && currFast > currSlow:
			out[i] = 1
		case prevFast >= prevSlow && currFast < currSlow:
			out[i] = -1
		}
	}

	return Series{values: out, first: first}
}
