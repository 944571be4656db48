// Package trade defines the trade record and the exit state machine that
// drives every open position from OPEN to exactly one terminal outcome.
package trade

import "time"

// Outcome is the terminal state of a trade. None means the trade is still
// open.
type Outcome int8

const (
	None Outcome = iota
	Stop
	Target
	Trail
	Time
	Expire
)

func (o Outcome) String() string {
	switch o {
	case Stop:
		return "STOP"
	case Target:
		return "TARGET"
	case Trail:
		return "TRAIL"
	case Time:
		return "TIME"
	case Expire:
		return "EXPIRE"
	default:
		return "OPEN"
	}
}

// Trade is a planned position. Stop and Target are fixed at creation;
// TrailingStop is the only mutable price level and may only move in the
// favorable direction. The engine owns the record until close, after which
// the journal holds the durable copy.
type Trade struct {
	ID       string
	Symbol   string
	Strategy string

	// Contract and OptionType are set for options trades, empty for equity.
	Contract   string
	OptionType string

	OpenedAt     time.Time
	Entry        float64
	Stop         float64
	Target       float64
	TrailingStop float64
	Expiry       time.Time // zero means no expiry

	Size       int
	Confidence float64

	Outcome  Outcome
	PnL      float64
	ClosedAt time.Time
}

// Side is +1 for long, -1 for short, from the sign of the confidence.
func (t *Trade) Side() float64 {
	if t.Confidence < 0 {
		return -1
	}
	return 1
}

// IsOpen reports whether the trade has not reached a terminal outcome.
func (t *Trade) IsOpen() bool { return t.Outcome == None }

// Close settles the trade at exitPrice with the given outcome.
// PnL = (exit - entry) * size * side * multiplier, where the multiplier is
// 100 for standard US equity options and 1 for shares.
func (t *Trade) Close(exitPrice float64, outcome Outcome, multiplier float64, when time.Time) {
	if !t.IsOpen() || outcome == None {
		return
	}
	t.PnL = (exitPrice - t.Entry) * float64(t.Size) * t.Side() * multiplier
	t.Outcome = outcome
	t.ClosedAt = when
}
