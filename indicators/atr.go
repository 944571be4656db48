package indicators

import (
	"fmt"
	"math"

	"autotrader/market"
)

// ATR calculates the Average True Range over the given period as the simple
// mean of the trailing true ranges.
func ATR(bars market.Series, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period+1 {
		return 0, fmt.Errorf("%w: need %d bars, got %d", ErrInsufficientData, period+1, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += trueRange(bars[i], bars[i-1])
	}
	return sum / float64(period), nil
}

// trueRange is the largest of high-low, |high-prevClose| and |low-prevClose|.
func trueRange(current, previous market.Bar) float64 {
	hl := current.High - current.Low
	hc := math.Abs(current.High - previous.Close)
	lc := math.Abs(current.Low - previous.Close)
	return math.Max(hl, math.Max(hc, lc))
}

// RealizedVol calculates annualized realized volatility from log returns over
// the trailing window, scaled by sqrt(252) trading days.
func RealizedVol(closes []float64, window int) (float64, error) {
	if window <= 1 {
		return 0, fmt.Errorf("window must be above 1, got %d", window)
	}
	if len(closes) < window+1 {
		return 0, fmt.Errorf("%w: need %d, got %d", ErrInsufficientData, window+1, len(closes))
	}

	returns := make([]float64, 0, window)
	for i := len(closes) - window; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, fmt.Errorf("non-positive close at index %d", i)
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(252), nil
}

// VWAP calculates the volume-weighted average price over the whole series.
// Zero total volume falls back to the mean of typical prices.
func VWAP(bars market.Series) (float64, error) {
	if len(bars) == 0 {
		return 0, fmt.Errorf("%w: empty series", ErrInsufficientData)
	}

	var pv, vol float64
	for _, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3
		pv += typical * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		sum := 0.0
		for _, b := range bars {
			sum += (b.High + b.Low + b.Close) / 3
		}
		return sum / float64(len(bars)), nil
	}
	return pv / vol, nil
}
