package options

import "math"

// Greeks holds the Black-Scholes sensitivities of a single contract.
// Vega is per one volatility point.
type Greeks struct {
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
	Rho   float64
}

// BlackScholes computes the Greeks for a European option with spot S,
// strike K, time to expiry T in years, risk-free rate r and annualized
// volatility sigma. Degenerate inputs (T, sigma, S or K at or below zero)
// yield a zero result rather than a domain error from log or sqrt.
func BlackScholes(S, K, T, r, sigma float64, typ OptionType) Greeks {
	if T <= 0 || sigma <= 0 || S <= 0 || K <= 0 {
		return Greeks{}
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	var g Greeks
	if typ == Put {
		g.Delta = -normCDF(-d1)
		g.Rho = -K * T * math.Exp(-r*T) * normCDF(-d2)
		g.Theta = -(S*normPDF(d1)*sigma)/(2*sqrtT) + r*K*math.Exp(-r*T)*normCDF(-d2)
	} else {
		g.Delta = normCDF(d1)
		g.Rho = K * T * math.Exp(-r*T) * normCDF(d2)
		g.Theta = -(S*normPDF(d1)*sigma)/(2*sqrtT) - r*K*math.Exp(-r*T)*normCDF(d2)
	}

	g.Gamma = normPDF(d1) / (S * sigma * sqrtT)
	g.Vega = S * normPDF(d1) * sqrtT / 100

	return g
}

// ExpectedMove is the one-sigma move implied by the IV over the given number
// of calendar days: price * iv * sqrt(days/365).
func ExpectedMove(price, iv float64, days float64) float64 {
	if price <= 0 || iv <= 0 || days <= 0 {
		return 0
	}
	return price * iv * math.Sqrt(days/365)
}

// GammaExposure aggregates dealer gamma exposure across the chain:
// gamma * open interest * 100 * spot, sign-flipped for puts.
func GammaExposure(ch Chain, spot float64) float64 {
	if spot <= 0 {
		return 0
	}
	gex := 0.0
	for _, c := range ch {
		dir := 1.0
		if c.Type == Put {
			dir = -1.0
		}
		gex += c.Gamma * c.OpenInterest * 100 * spot * dir
	}
	return gex
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
