// Package ml is the boundary to the probability model. The engine treats the
// model as a black box that either returns a win probability in [0,1] or has
// no opinion; it never sees model internals.
package ml

import (
	"errors"

	"autotrader/indicators"
	"autotrader/market"
	"autotrader/strategies"
)

// ErrNoModel reports that no model is available. The aggregator treats it as
// "no opinion", not as a rejection.
var ErrNoModel = errors.New("no model available")

// Predictor scores a trade setup. Implementations wrap whatever model the
// deployment runs; a timeout or transport failure surfaces as an error and
// the caller skips the filter for that tick.
type Predictor interface {
	Predict(bars market.Series, ctx strategies.Context) (float64, error)
}

// Bypass approves everything with probability 1. It is the predictor wired
// in when the ML filter is disabled and in backtests.
type Bypass struct{}

func (Bypass) Predict(market.Series, strategies.Context) (float64, error) {
	return 1.0, nil
}

// Unavailable always reports no opinion. Useful in tests and as the default
// before a model is deployed.
type Unavailable struct{}

func (Unavailable) Predict(market.Series, strategies.Context) (float64, error) {
	return 0, ErrNoModel
}

// Features is the feature vector journaled with each trade so the model can
// be retrained offline from outcomes.
type Features struct {
	Close   float64 `json:"close"`
	EMAFast float64 `json:"ema_fast"`
	EMASlow float64 `json:"ema_slow"`
	ATR     float64 `json:"atr"`
	Volume  float64 `json:"volume"`
	VIX     float64 `json:"vix"`
}

// Extract builds the feature vector from the bar window. Short history
// leaves the affected features at zero; extraction never fails.
func Extract(bars market.Series, vix float64) Features {
	var f Features
	f.VIX = vix

	last, ok := bars.Last()
	if !ok {
		return f
	}
	f.Close = last.Close
	f.Volume = last.Volume

	closes := bars.Closes()
	if v, err := indicators.EMA(closes, 12); err == nil {
		f.EMAFast = v
	}
	if v, err := indicators.EMA(closes, 26); err == nil {
		f.EMASlow = v
	}
	if v, err := indicators.ATR(bars, 14); err == nil {
		f.ATR = v
	}
	return f
}
