package strategies

import (
	"autotrader/market"
	"autotrader/regime"
)

// ExpectedMoveFade fades price extensions beyond the options-implied expected
// move band around the underlying.
type ExpectedMoveFade struct{}

func (s *ExpectedMoveFade) Name() string { return "expected_move_fade" }

func (s *ExpectedMoveFade) Regimes() []regime.Regime { return nil }

func (s *ExpectedMoveFade) Ready(ctx Context) bool {
	return ctx.HasExpectedMove && ctx.UnderlyingPrice > 0
}

func (s *ExpectedMoveFade) Evaluate(_ market.Series, ctx Context) Direction {
	if ctx.Price <= 0 || ctx.ExpectedMove <= 0 {
		return None
	}
	upper := ctx.UnderlyingPrice + ctx.ExpectedMove
	lower := ctx.UnderlyingPrice - ctx.ExpectedMove
	switch {
	case ctx.Price > upper:
		return Short
	case ctx.Price < lower:
		return Long
	default:
		return None
	}
}

// GammaScalp leans against aggregate dealer gamma: positive gamma exposure
// pins price (fade strength), negative gamma amplifies moves (fade weakness).
type GammaScalp struct {
	// Threshold is the minimum |exposure| to act on; 0 reacts to any sign.
	Threshold float64
}

func (s *GammaScalp) Name() string { return "gamma_scalping" }

func (s *GammaScalp) Regimes() []regime.Regime { return nil }

func (s *GammaScalp) Ready(ctx Context) bool { return ctx.HasGamma }

func (s *GammaScalp) Evaluate(_ market.Series, ctx Context) Direction {
	switch {
	case ctx.GammaExposure > s.Threshold:
		return Short
	case ctx.GammaExposure < -s.Threshold:
		return Long
	default:
		return None
	}
}

// OptionsFlow thresholds a normalized flow score from the upstream flow
// scanner at +/- Threshold.
type OptionsFlow struct {
	Threshold float64
}

func (s *OptionsFlow) Name() string { return "options_flow" }

func (s *OptionsFlow) Regimes() []regime.Regime { return nil }

func (s *OptionsFlow) Ready(ctx Context) bool { return ctx.HasFlow }

func (s *OptionsFlow) Evaluate(_ market.Series, ctx Context) Direction {
	switch {
	case ctx.FlowScore > s.Threshold:
		return Long
	case ctx.FlowScore < -s.Threshold:
		return Short
	default:
		return None
	}
}
