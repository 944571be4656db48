// Package regime labels the current market state from price action and the
// implied-versus-realized volatility relationship.
package regime

import (
	"autotrader/indicators"
	"autotrader/market"
)

// Regime is a market state label.
type Regime string

const (
	HighIV        Regime = "high_iv"
	Trend         Regime = "trend"
	MeanReversion Regime = "mean_reversion"
	Neutral       Regime = "neutral"
)

const (
	atrPeriod  = 14
	rsiPeriod  = 14
	volWindow  = 20
	ivRatio    = 1.5
	atrPctMin  = 0.015
	rsiTrendLo = 40
	rsiTrendHi = 60
	rsiExtHi   = 70
	rsiExtLo   = 30
)

// Classify labels the regime with a fixed-order decision tree:
//
//  1. high_iv when implied vol exceeds 1.5x realized vol
//  2. trend when ATR% of price is above 1.5% and RSI sits between 40 and 60
//  3. mean_reversion on RSI extremes (above 70 or below 30)
//  4. neutral otherwise
//
// Ties break on first match, not magnitude. impliedVol of 0 means no IV data.
// Indicator failures from short history degrade to neutral inputs, so the
// classifier itself never fails.
func Classify(bars market.Series, impliedVol float64) Regime {
	price := bars.LastClose()

	closes := bars.Closes()

	atr, err := indicators.ATR(bars, atrPeriod)
	if err != nil {
		atr = 0
	}
	atrPct := 0.0
	if price > 0 {
		atrPct = atr / price
	}

	rsi, err := indicators.RSI(closes, rsiPeriod)
	if err != nil {
		rsi = 50
	}

	realized, err := indicators.RealizedVol(closes, volWindow)
	if err != nil {
		realized = 0
	}

	if impliedVol > 0 && impliedVol > realized*ivRatio {
		return HighIV
	}
	if atrPct > atrPctMin && rsi > rsiTrendLo && rsi < rsiTrendHi {
		return Trend
	}
	if rsi > rsiExtHi || rsi < rsiExtLo {
		return MeanReversion
	}
	return Neutral
}
