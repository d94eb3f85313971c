package dataset

import (
	"math"
	"math/rand"
	"time"

	"github.com/openquant/strategist/internal/core"
)

// SyntheticConfig controls the generated series. The same config always
// produces the same bars.
type SyntheticConfig struct {
	Days       int
	StartDate  time.Time
	StartPrice float64
	Drift      float64 // mean daily return
	Volatility float64 // daily return standard deviation
	BaseVolume float64
	Seed       int64
}

// DefaultSyntheticConfig returns a gently trending year of daily bars.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Days:       252,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		StartPrice: 100,
		Drift:      0.0005,
		Volatility: 0.02,
		BaseVolume: 1_000_000,
		Seed:       42,
	}
}

// Synthetic generates a deterministic geometric random walk of daily bars.
func Synthetic(cfg SyntheticConfig) []core.Bar {
	rng := rand.New(rand.NewSource(cfg.Seed))

	bars := make([]core.Bar, cfg.Days)
	prevClose := cfg.StartPrice

	for i := range bars {
		ret := cfg.Drift + cfg.Volatility*rng.NormFloat64()
		// Cap single-day moves so prices stay positive.
		if ret < -0.5 {
			ret = -0.5
		}

		open := prevClose
		close := open * (1 + ret)

		span := math.Abs(rng.NormFloat64()) * cfg.Volatility * open * 0.5
		high := math.Max(open, close) + span
		low := math.Min(open, close) - span
		if low <= 0 {
			low = math.Min(open, close) * 0.9
		}

		// Heavier volume on larger moves.
		volume := cfg.BaseVolume * (0.6 + rng.Float64()*0.8 + math.Abs(ret)*10)

		bars[i] = core.Bar{
			Date:   cfg.StartDate.AddDate(0, 0, i),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: int64(volume),
		}
		prevClose = close
	}

	return bars
}
