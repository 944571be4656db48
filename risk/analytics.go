package risk

import (
	"math/rand"
	"sort"
)

// KellyFraction returns the optimal bet fraction for a given win rate and
// reward-to-risk ratio, floored at zero. The planner uses a fixed cap
// instead of the raw fraction; this is exposed for sizing research.
func KellyFraction(winRate, rr float64) float64 {
	p := winRate
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	if rr <= 0 {
		return 0
	}
	q := 1 - p
	f := (rr*p - q) / rr
	if f < 0 {
		return 0
	}
	return f
}

// MonteCarloVaR estimates value-at-risk by simulating n one-day normal
// returns with mean mu and volatility sigma and taking the equity shortfall
// at the alpha quantile. The caller supplies the RNG so results are
// reproducible.
func MonteCarloVaR(equity, mu, sigma float64, n int, alpha float64, rng *rand.Rand) float64 {
	if equity <= 0 || n <= 0 || alpha <= 0 || alpha >= 1 {
		return 0
	}

	portfolios := make([]float64, n)
	for i := range portfolios {
		portfolios[i] = equity * (1 + mu + sigma*rng.NormFloat64())
	}
	sort.Float64s(portfolios)

	idx := int(alpha * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return equity - portfolios[idx]
}

// StressTest returns the simulated loss from an overnight gap of gapPct.
func StressTest(equity, gapPct float64) float64 {
	if equity <= 0 || gapPct <= 0 {
		return 0
	}
	return equity * gapPct
}
