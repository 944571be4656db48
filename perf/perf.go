// Package perf holds trade lifecycle analytics: excursion tracking for open
// trades, capital health, and per-strategy PnL attribution.
package perf

import (
	"sync"
	"time"

	"autotrader/trade"
)

// Lifecycle is the excursion record emitted when a tracked trade closes.
// MFE and MAE are per-unit price excursions signed from the trade's side,
// so MFE >= 0 and MAE <= 0 always.
type Lifecycle struct {
	ID       string
	MFE      float64
	MAE      float64
	HoldTime time.Duration
}

// Tracker follows open trades and records their maximum favorable and
// adverse excursions. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	open   map[string]*excursion
	closed []Lifecycle
}

type excursion struct {
	mfe      float64
	mae      float64
	openedAt time.Time
}

func NewTracker() *Tracker {
	return &Tracker{open: make(map[string]*excursion)}
}

// Track starts following a trade. Tracking an ID twice resets its excursions.
func (tr *Tracker) Track(t *trade.Trade) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.open[t.ID] = &excursion{openedAt: t.OpenedAt}
}

// Observe updates the excursions of a tracked trade from the current price.
// Unknown IDs are ignored.
func (tr *Tracker) Observe(t *trade.Trade, price float64) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	ex, ok := tr.open[t.ID]
	if !ok {
		return
	}
	pnl := (price - t.Entry) * t.Side()
	if pnl > ex.mfe {
		ex.mfe = pnl
	}
	if pnl < ex.mae {
		ex.mae = pnl
	}
}

// CloseTrade finalizes the lifecycle record for a trade. Closing an untracked
// ID returns a zero Lifecycle.
func (tr *Tracker) CloseTrade(t *trade.Trade, when time.Time) Lifecycle {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	ex, ok := tr.open[t.ID]
	if !ok {
		return Lifecycle{}
	}
	delete(tr.open, t.ID)

	lc := Lifecycle{
		ID:       t.ID,
		MFE:      ex.mfe,
		MAE:      ex.mae,
		HoldTime: when.Sub(ex.openedAt),
	}
	tr.closed = append(tr.closed, lc)
	return lc
}

// Lifecycles returns a copy of all finalized lifecycle records.
func (tr *Tracker) Lifecycles() []Lifecycle {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]Lifecycle, len(tr.closed))
	copy(out, tr.closed)
	return out
}

// Health summarizes account condition.
type Health struct {
	// Drawdown is the fractional distance from the equity peak.
	Drawdown float64

	// RiskOfRuin is a coarse approximation from win rate and reward-to-risk,
	// clamped to [0, 1]. It is a dashboard number, not a sizing input.
	RiskOfRuin float64

	// Utilization is current equity over starting equity.
	Utilization float64
}

// CapitalHealth computes Health from closed trades in close order.
func CapitalHealth(closed []*trade.Trade, equity, startingEquity float64) Health {
	var h Health

	peak := startingEquity
	running := startingEquity
	for _, t := range closed {
		running += t.PnL
		if running > peak {
			peak = running
		}
	}
	if equity > peak {
		peak = equity
	}
	if peak > 0 {
		h.Drawdown = (peak - equity) / peak
	}

	var wins, losses int
	var winSum, lossSum float64
	for _, t := range closed {
		if t.PnL > 0 {
			wins++
			winSum += t.PnL
		} else {
			losses++
			lossSum -= t.PnL
		}
	}

	winRate := 0.5
	if wins+losses > 0 {
		winRate = float64(wins) / float64(wins+losses)
	}
	avgWin := 1.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	avgLoss := 1.0
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}

	rr := avgWin / avgLoss
	ruin := 1 - (winRate - (1-winRate)/rr)
	if ruin > 1 {
		ruin = 1
	}
	if ruin < 0 {
		ruin = 0
	}
	h.RiskOfRuin = ruin

	if startingEquity > 0 {
		h.Utilization = equity / startingEquity
	}
	return h
}

// StrategyPnL is the attribution line for one strategy.
type StrategyPnL struct {
	Count   int
	NetPnL  float64
	WinRate float64
}

// Attribution aggregates closed-trade PnL by strategy.
func Attribution(closed []*trade.Trade) map[string]StrategyPnL {
	out := make(map[string]StrategyPnL)
	for _, t := range closed {
		line := out[t.Strategy]
		line.Count++
		line.NetPnL += t.PnL
		if t.PnL > 0 {
			// WinRate holds the win count until the final pass.
			line.WinRate++
		}
		out[t.Strategy] = line
	}
	for name, line := range out {
		line.WinRate /= float64(line.Count)
		out[name] = line
	}
	return out
}
