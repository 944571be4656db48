package strategies

import (
	"autotrader/indicators"
	"autotrader/market"
	"autotrader/regime"
)

// VWAPEMATrend votes with the fast/slow EMA relationship, confirmed by the
// close sitting on the matching side of VWAP.
type VWAPEMATrend struct {
	Fast int
	Slow int
}

func (s *VWAPEMATrend) Name() string { return "vwap_ema_trend" }

func (s *VWAPEMATrend) Regimes() []regime.Regime {
	return []regime.Regime{regime.Trend, regime.Neutral}
}

func (s *VWAPEMATrend) Ready(Context) bool { return true }

func (s *VWAPEMATrend) Evaluate(bars market.Series, _ Context) Direction {
	closes := bars.Closes()

	fast, err := indicators.EMA(closes, s.Fast)
	if err != nil {
		return None
	}
	slow, err := indicators.EMA(closes, s.Slow)
	if err != nil {
		return None
	}
	vwap, err := indicators.VWAP(bars)
	if err != nil {
		return None
	}

	price := bars.LastClose()
	switch {
	case fast > slow && price > vwap:
		return Long
	case fast < slow && price < vwap:
		return Short
	default:
		return None
	}
}

// Breakout votes long when the last close clears the rolling high of the
// prior Lookback bars, short when it breaks the rolling low.
type Breakout struct {
	Lookback int
}

func (s *Breakout) Name() string { return "breakout" }

func (s *Breakout) Regimes() []regime.Regime {
	return []regime.Regime{regime.Trend}
}

func (s *Breakout) Ready(Context) bool { return true }

func (s *Breakout) Evaluate(bars market.Series, _ Context) Direction {
	hi, err := indicators.RollingHigh(bars.Highs(), s.Lookback)
	if err != nil {
		return None
	}
	lo, err := indicators.RollingLow(bars.Lows(), s.Lookback)
	if err != nil {
		return None
	}

	price := bars.LastClose()
	switch {
	case price > hi:
		return Long
	case price < lo:
		return Short
	default:
		return None
	}
}

// MeanReversion fades RSI extremes: overbought is a short, oversold a long.
type MeanReversion struct {
	Period int
}

func (s *MeanReversion) Name() string { return "mean_reversion" }

func (s *MeanReversion) Regimes() []regime.Regime {
	return []regime.Regime{regime.MeanReversion, regime.Neutral}
}

func (s *MeanReversion) Ready(Context) bool { return true }

func (s *MeanReversion) Evaluate(bars market.Series, _ Context) Direction {
	rsi, err := indicators.RSI(bars.Closes(), s.Period)
	if err != nil {
		return None
	}
	switch {
	case rsi > 70:
		return Short
	case rsi < 30:
		return Long
	default:
		return None
	}
}

// OpeningRange trades with a breakout of the range set by the first
// RangeBars bars of the session. The fade-the-breakout variant exists in
// other desks' books; this one trades with the break.
type OpeningRange struct {
	RangeBars int
}

func (s *OpeningRange) Name() string { return "orb" }

func (s *OpeningRange) Regimes() []regime.Regime { return nil }

func (s *OpeningRange) Ready(Context) bool { return true }

func (s *OpeningRange) Evaluate(bars market.Series, _ Context) Direction {
	if len(bars) <= s.RangeBars {
		return None
	}

	hi := bars[0].High
	lo := bars[0].Low
	for _, b := range bars[1:s.RangeBars] {
		if b.High > hi {
			hi = b.High
		}
		if b.Low < lo {
			lo = b.Low
		}
	}

	price := bars.LastClose()
	switch {
	case price > hi:
		return Long
	case price < lo:
		return Short
	default:
		return None
	}
}
