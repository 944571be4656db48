// Package options models option chains and the volatility analytics derived
// from them: Black-Scholes Greeks, expected move, gamma exposure, IV skew
// and term structure, liquidity scoring and fill pricing.
package options

import "time"

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Contract is one row of an options chain as delivered by the upstream
// chain fetcher.
type Contract struct {
	Symbol       string
	Strike       float64
	Expiry       time.Time
	Type         OptionType
	Bid          float64
	Ask          float64
	IV           float64
	Delta        float64
	Gamma        float64
	Theta        float64
	Vega         float64
	OpenInterest float64
	Volume       float64
}

// Chain is a snapshot of contracts for one underlying at one point in time.
type Chain []Contract

// Mid returns the bid/ask midpoint.
func (c Contract) Mid() float64 {
	return (c.Bid + c.Ask) / 2
}

// Spread returns the relative bid/ask spread against the mid. Contracts with
// no quote report a spread of 1 so they always fail a spread filter.
func (c Contract) Spread() float64 {
	mid := c.Mid()
	if mid <= 0 {
		return 1
	}
	return (c.Ask - c.Bid) / mid
}

// FilterSpread returns the contracts whose relative spread is at or below
// maxSpread. The planner never sees wider quotes.
func (ch Chain) FilterSpread(maxSpread float64) Chain {
	out := make(Chain, 0, len(ch))
	for _, c := range ch {
		if c.Spread() <= maxSpread {
			out = append(out, c)
		}
	}
	return out
}

// FillPrice is the execution price used when settling a fill. Conservative
// mode takes the bid side, which understates gains on wide-spread contracts.
func FillPrice(bid, ask float64, conservative bool) float64 {
	if conservative {
		if bid > 0 {
			return bid
		}
		return ask
	}
	return (bid + ask) / 2
}

// LiquidityScore rates a contract 0..1 from spread, open interest and
// volume, one third each.
func LiquidityScore(c Contract, maxSpread float64) float64 {
	score := 0.0
	if c.Spread() <= maxSpread {
		score++
	}
	if c.OpenInterest > 500 {
		score++
	}
	if c.Volume > 100 {
		score++
	}
	return score / 3
}

// OpenInterestProfile aggregates open interest by strike.
func OpenInterestProfile(ch Chain) map[float64]float64 {
	out := make(map[float64]float64, len(ch))
	for _, c := range ch {
		out[c.Strike] += c.OpenInterest
	}
	return out
}
