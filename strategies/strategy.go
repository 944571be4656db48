// Package strategies holds the independent scoring functions combined by the
// signal aggregator. Every strategy maps a bar window and market context to a
// direction in {-1, 0, +1} and never fails: missing data is no opinion.
//
// Strategies carry their regime gates declaratively via Regimes(); the
// aggregator applies the gating, strategies never check the regime
// themselves.
package strategies

import (
	"autotrader/market"
	"autotrader/regime"
)

// Direction is a strategy vote: -1 short, 0 no opinion, +1 long.
type Direction int8

const (
	Short Direction = -1
	None  Direction = 0
	Long  Direction = +1
)

// Context carries the per-tick market quantities that options strategies
// need. The Has* flags distinguish a true zero from missing data.
type Context struct {
	Price           float64
	UnderlyingPrice float64

	ExpectedMove    float64
	HasExpectedMove bool

	GammaExposure float64
	HasGamma      bool

	FlowScore float64
	HasFlow   bool
}

// Strategy is one independent scoring function.
type Strategy interface {
	// Name is a stable identifier used for weights and journaling.
	Name() string

	// Regimes lists the regimes this strategy trades in. Nil means all.
	Regimes() []regime.Regime

	// Ready reports whether the context carries the data this strategy
	// needs. Strategies that are not ready are excluded from the aggregate
	// entirely, not counted as a zero vote.
	Ready(ctx Context) bool

	// Evaluate returns the strategy's vote. It must be pure and must not
	// fail; insufficient history degrades to None.
	Evaluate(bars market.Series, ctx Context) Direction
}

// Default returns the standard strategy set with conventional parameters.
func Default() []Strategy {
	return []Strategy{
		&VWAPEMATrend{Fast: 9, Slow: 21},
		&Breakout{Lookback: 20},
		&MeanReversion{Period: 14},
		&OpeningRange{RangeBars: 15},
		&ExpectedMoveFade{},
		&GammaScalp{},
		&OptionsFlow{Threshold: 0.7},
	}
}

// ByName finds a strategy in the set, nil if absent.
func ByName(set []Strategy, name string) Strategy {
	for _, s := range set {
		if s.Name() == name {
			return s
		}
	}
	return nil
}
