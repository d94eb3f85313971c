package core

import (
	"fmt"
	"time"
)

// Bar is one trading day's OHLCV record. Bars are immutable once loaded;
// a bar sequence is ordered by date, strictly increasing, no duplicates.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Action represents a strategy decision action
type Action string

const (
	ActionNone  Action = "none"
	ActionEnter Action = "enter"
	ActionExit  Action = "exit"
)

// ExitReason identifies which rule closed a position
type ExitReason string

const (
	ExitStopLoss         ExitReason = "stop_loss"
	ExitTarget           ExitReason = "target"
	ExitTimeStop         ExitReason = "time_stop"
	ExitExtendedTimeStop ExitReason = "extended_time_stop"
	ExitSignalReversal   ExitReason = "signal_reversal"
)

// Decision is the outcome of one strategy evaluation at a single bar.
// Size is set on enter, Reason on exit.
type Decision struct {
	Action Action
	Size   int
	Reason ExitReason
}

// Enter builds an entry decision for the given number of units.
func Enter(size int) Decision {
	return Decision{Action: ActionEnter, Size: size}
}

// Exit builds an exit decision with the triggering rule.
func Exit(reason ExitReason) Decision {
	return Decision{Action: ActionExit, Reason: reason}
}

// NoAction is the neutral decision.
var NoAction = Decision{Action: ActionNone}

// Position is an open long position. It is owned by exactly one strategy
// instance and reset to nil on exit.
type Position struct {
	EntryDate   time.Time
	EntryPrice  float64
	Size        int
	StopPrice   float64
	TargetPrice float64 // zero when the strategy sets no target
}

// DaysHeld returns calendar days between entry and the given date.
func (p *Position) DaysHeld(date time.Time) int {
	return int(date.Sub(p.EntryDate).Hours() / 24)
}

// PnLPct returns the unrealized return percentage at the given price.
func (p *Position) PnLPct(price float64) float64 {
	return (price/p.EntryPrice - 1) * 100
}

// Trade is a completed round trip, created on exit and immutable thereafter.
// PnL is gross of commission; commission affects only ledger cash.
type Trade struct {
	EntryDate  time.Time
	EntryPrice float64
	ExitDate   time.Time
	ExitPrice  float64
	Size       int
	PnL        float64
	PnLPct     float64
	DaysHeld   int
	ExitReason ExitReason
}

// IsWin returns true if the trade was profitable
func (t Trade) IsWin() bool {
	return t.PnL > 0
}

// EquityPoint is one mark-to-market observation of portfolio value.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}

// ValidateBars rejects malformed input before a run starts: empty input,
// non-monotonic or duplicate dates, and non-positive prices.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	for i, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return WrapError(ErrInvalidBars,
				fmt.Errorf("bar %d (%s): non-positive price", i, b.Date.Format("2006-01-02")))
		}
		if b.Volume < 0 {
			return WrapError(ErrInvalidBars,
				fmt.Errorf("bar %d (%s): negative volume", i, b.Date.Format("2006-01-02")))
		}
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			return WrapError(ErrInvalidBars,
				fmt.Errorf("bar %d (%s): date not after previous bar", i, b.Date.Format("2006-01-02")))
		}
	}
	return nil
}

// Closes extracts closing prices from a bar sequence.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts high prices from a bar sequence.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Volumes extracts volumes from a bar sequence as floats.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume)
	}
	return out
}
