// Package risk owns the account guardrails, position sizing and trade
// planning. Nothing in this package panics: a rejected plan is an expected
// outcome, not an error condition.
package risk

import (
	"math"
	"time"
)

// Account tracks equity and the daily counters that feed the guardrails.
// Counters reset exactly once when the wall-clock date advances past
// LastReset. One Account exists per run (live) or per backtest symbol.
type Account struct {
	StartingEquity float64
	Equity         float64
	TradesToday    int
	DailyPnL       float64
	LastReset      time.Time // date component only
}

// NewAccount creates an account with the given starting equity, dated now.
func NewAccount(startingEquity float64, now time.Time) *Account {
	return &Account{
		StartingEquity: startingEquity,
		Equity:         startingEquity,
		LastReset:      dateOf(now),
	}
}

// ResetDay clears the daily counters. Called automatically on date rollover.
func (a *Account) ResetDay(now time.Time) {
	a.TradesToday = 0
	a.DailyPnL = 0
	a.LastReset = dateOf(now)
}

// rollover resets the daily counters once when the date has advanced.
func (a *Account) rollover(now time.Time) {
	if dateOf(now).After(a.LastReset) {
		a.ResetDay(now)
	}
}

// CanTrade reports whether the guardrails allow a new position: under the
// per-day trade cap and under the daily loss limit. The date rollover is
// applied before the checks.
func (a *Account) CanTrade(now time.Time, maxTradesPerDay int, maxDailyLossPct float64) bool {
	a.rollover(now)

	if a.TradesToday >= maxTradesPerDay {
		return false
	}
	if math.Abs(a.DailyPnL) >= maxDailyLossPct*a.Equity {
		return false
	}
	return true
}

// UpdatePnL applies a closed trade's realized PnL to equity and the daily
// counters. It is the only mutation path besides ResetDay.
func (a *Account) UpdatePnL(pnl float64) {
	a.Equity += pnl
	a.DailyPnL += pnl
	a.TradesToday++
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
