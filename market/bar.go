// Package market defines the bar series model shared by the signal engine,
// the trade planner, and the backtester.
package market

import "time"

// Bar is a single OHLCV bar. Bars arrive in strictly increasing time order,
// one per symbol per tick, either as a batch (backtest) or incrementally
// (live).
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is an ordered bar history for one symbol.
type Series []Bar

// Window returns the prefix of the series up to and including index i.
// The returned slice aliases the original; callers must not mutate it.
// This is the only view the backtester hands to the signal engine, which
// keeps look-ahead structurally impossible.
func (s Series) Window(i int) Series {
	if i < 0 {
		return nil
	}
	if i >= len(s) {
		i = len(s) - 1
	}
	return s[:i+1]
}

// Last returns the most recent bar and false if the series is empty.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s Series) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high column.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}
