package backtest

import (
	"time"

	"autotrader/options"
	"autotrader/strategies"
)

// ChainProvider hands the runner an options chain snapshot for a date. An
// error means no chain this tick: options strategies sit out, nothing fails.
type ChainProvider interface {
	Chain(symbol string, date time.Time) (options.Chain, error)
}

// chainContext derives the market context and ATM implied volatility the
// aggregator needs from a spread-filtered chain snapshot.
func chainContext(ch options.Chain, spot float64, now time.Time) (strategies.Context, float64) {
	ctx := strategies.Context{Price: spot, UnderlyingPrice: spot}
	if len(ch) == 0 || spot <= 0 {
		return ctx, 0
	}

	skew := options.IVSkew(ch, spot, 0.05)
	iv := skew.ATMIV

	days := daysToNearestExpiry(ch, now)
	if em := options.ExpectedMove(spot, iv, days); em > 0 {
		ctx.ExpectedMove = em
		ctx.HasExpectedMove = true
	}

	ctx.GammaExposure = options.GammaExposure(ch, spot)
	ctx.HasGamma = true

	return ctx, iv
}

func daysToNearestExpiry(ch options.Chain, now time.Time) float64 {
	nearest := 0.0
	for _, c := range ch {
		days := c.Expiry.Sub(now).Hours() / 24
		if days <= 0 {
			continue
		}
		if nearest == 0 || days < nearest {
			nearest = days
		}
	}
	if nearest == 0 {
		return 1
	}
	return nearest
}
