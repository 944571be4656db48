package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"autotrader/trade"
)

func closedTrade(strategy string, pnl float64) *trade.Trade {
	return &trade.Trade{
		ID:       strategy + "-x",
		Strategy: strategy,
		Outcome:  trade.Target,
		PnL:      pnl,
	}
}

func TestTrackerExcursions(t *testing.T) {
	t.Parallel()

	opened := time.Date(2024, 4, 8, 15, 0, 0, 0, time.UTC)
	tr := NewTracker()
	long := &trade.Trade{ID: "t1", Entry: 100, Confidence: 1.0, OpenedAt: opened}

	tr.Track(long)
	tr.Observe(long, 103) // favorable +3
	tr.Observe(long, 98)  // adverse -2
	tr.Observe(long, 101) // inside prior extremes, no change

	lc := tr.CloseTrade(long, opened.Add(45*time.Minute))
	assert.Equal(t, "t1", lc.ID)
	assert.InDelta(t, 3.0, lc.MFE, 1e-9)
	assert.InDelta(t, -2.0, lc.MAE, 1e-9)
	assert.Equal(t, 45*time.Minute, lc.HoldTime)

	assert.Len(t, tr.Lifecycles(), 1)
}

func TestTrackerShortSideSignsExcursions(t *testing.T) {
	t.Parallel()

	opened := time.Date(2024, 4, 8, 15, 0, 0, 0, time.UTC)
	tr := NewTracker()
	short := &trade.Trade{ID: "s1", Entry: 100, Confidence: -1.0, OpenedAt: opened}

	tr.Track(short)
	tr.Observe(short, 97)  // favorable for a short
	tr.Observe(short, 102) // adverse

	lc := tr.CloseTrade(short, opened.Add(time.Minute))
	assert.InDelta(t, 3.0, lc.MFE, 1e-9)
	assert.InDelta(t, -2.0, lc.MAE, 1e-9)
}

func TestTrackerUntrackedIsInert(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	ghost := &trade.Trade{ID: "ghost", Entry: 100, Confidence: 1.0}

	tr.Observe(ghost, 110)
	lc := tr.CloseTrade(ghost, time.Now())
	assert.Zero(t, lc)
	assert.Empty(t, tr.Lifecycles())
}

func TestCapitalHealth(t *testing.T) {
	t.Parallel()

	closed := []*trade.Trade{
		closedTrade("orb", 500),
		closedTrade("orb", -200),
		closedTrade("breakout", -300),
	}

	// Peak 100_500 after the first win, equity 100_000 now.
	h := CapitalHealth(closed, 100_000, 100_000)
	assert.InDelta(t, 500.0/100_500.0, h.Drawdown, 1e-9)
	assert.InDelta(t, 1.0, h.Utilization, 1e-9)

	// win_rate 1/3, avg_win 500, avg_loss 250, rr 2:
	// ruin = 1 - (1/3 - (2/3)/2) = 1.
	assert.InDelta(t, 1.0, h.RiskOfRuin, 1e-9)
}

func TestCapitalHealthNoTrades(t *testing.T) {
	t.Parallel()

	h := CapitalHealth(nil, 100_000, 100_000)
	assert.Zero(t, h.Drawdown)
	assert.InDelta(t, 1.0, h.Utilization, 1e-9)

	// Default 50% win rate at 1:1 gives ruin 0.5.
	assert.InDelta(t, 0.5, h.RiskOfRuin, 1e-9)
}

func TestAttribution(t *testing.T) {
	t.Parallel()

	closed := []*trade.Trade{
		closedTrade("orb", 100),
		closedTrade("orb", -40),
		closedTrade("orb", 60),
		closedTrade("breakout", -25),
	}

	attr := Attribution(closed)
	assert.Len(t, attr, 2)

	orb := attr["orb"]
	assert.Equal(t, 3, orb.Count)
	assert.InDelta(t, 120.0, orb.NetPnL, 1e-9)
	assert.InDelta(t, 2.0/3.0, orb.WinRate, 1e-9)

	bo := attr["breakout"]
	assert.Equal(t, 1, bo.Count)
	assert.InDelta(t, -25.0, bo.NetPnL, 1e-9)
	assert.Zero(t, bo.WinRate)
}

func TestAttributionEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Attribution(nil))
}
