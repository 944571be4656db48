// Package indicators provides technical analysis primitives for the signal
// engine. All functions are pure and stateless over ordered price series.
//
// Functions return ErrInsufficientData when the series is shorter than the
// lookback window. Callers decide the policy: the regime classifier and the
// strategies substitute neutral defaults, the planner falls back to a fixed
// fraction of price.
package indicators

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientData reports a series shorter than the requested lookback.
var ErrInsufficientData = errors.New("insufficient data")

// SMA calculates the Simple Moving Average over the last 'period' values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("%w: need %d, got %d", ErrInsufficientData, period, len(values))
	}

	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// EMA calculates the Exponential Moving Average for the given period,
// seeded with the SMA of the first 'period' values.
func EMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("%w: need %d, got %d", ErrInsufficientData, period, len(values))
	}

	multiplier := 2.0 / float64(period+1)

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += values[i]
	}
	ema := sma / float64(period)

	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
	}
	return ema, nil
}

// RSI calculates the Relative Strength Index over the given period using
// simple averages of gains and losses. 100 means all gains, 0 all losses.
func RSI(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period+1 {
		return 0, fmt.Errorf("%w: need %d, got %d", ErrInsufficientData, period+1, len(values))
	}

	var gains, losses float64
	for i := len(values) - period; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	if losses == 0 {
		if gains == 0 {
			return 50, nil
		}
		return 100, nil
	}

	rs := gains / losses
	return 100 - 100/(1+rs), nil
}

// MACD returns EMA(fast) - EMA(slow) of the series. The conventional
// parameters are fast=12, slow=26.
func MACD(values []float64, fast, slow int) (float64, error) {
	if fast >= slow {
		return 0, fmt.Errorf("fast period %d must be below slow period %d", fast, slow)
	}
	f, err := EMA(values, fast)
	if err != nil {
		return 0, err
	}
	s, err := EMA(values, slow)
	if err != nil {
		return 0, err
	}
	return f - s, nil
}

// Bands holds Bollinger band bounds around a moving average.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger computes bands at mean +/- stddevs standard deviations over the
// trailing window.
func Bollinger(values []float64, period int, stddevs float64) (Bands, error) {
	mean, err := SMA(values, period)
	if err != nil {
		return Bands{}, err
	}

	variance := 0.0
	for i := len(values) - period; i < len(values); i++ {
		d := values[i] - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	return Bands{
		Upper:  mean + stddevs*sd,
		Middle: mean,
		Lower:  mean - stddevs*sd,
	}, nil
}

// RollingHigh returns the maximum high over the last 'period' values,
// excluding the final value so breakout tests compare against prior bars.
func RollingHigh(highs []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(highs) < period+1 {
		return 0, fmt.Errorf("%w: need %d, got %d", ErrInsufficientData, period+1, len(highs))
	}
	max := math.Inf(-1)
	for i := len(highs) - 1 - period; i < len(highs)-1; i++ {
		if highs[i] > max {
			max = highs[i]
		}
	}
	return max, nil
}

// RollingLow returns the minimum low over the last 'period' values,
// excluding the final value.
func RollingLow(lows []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(lows) < period+1 {
		return 0, fmt.Errorf("%w: need %d, got %d", ErrInsufficientData, period+1, len(lows))
	}
	min := math.Inf(1)
	for i := len(lows) - 1 - period; i < len(lows)-1; i++ {
		if lows[i] < min {
			min = lows[i]
		}
	}
	return min, nil
}
