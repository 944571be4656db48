package journal

import (
	"fmt"
	"sync"

	"autotrader/ml"
	"autotrader/trade"
)

// Memory keeps trade records in process memory. Backtests use it when no
// database path is configured.
type Memory struct {
	mu     sync.Mutex
	trades []record
	byID   map[string]int
}

type record struct {
	strategy string
	outcome  trade.Outcome
	pnl      float64
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]int)}
}

func (m *Memory) Save(t *trade.Trade, _ ml.Features) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[t.ID]; ok {
		return fmt.Errorf("trade %q already journaled", t.ID)
	}
	m.byID[t.ID] = len(m.trades)
	m.trades = append(m.trades, record{
		strategy: t.Strategy,
		outcome:  t.Outcome,
		pnl:      t.PnL,
	})
	return nil
}

func (m *Memory) UpdateOutcome(id string, outcome trade.Outcome, pnl float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("trade %q not found", id)
	}
	m.trades[i].outcome = outcome
	m.trades[i].pnl = pnl
	return nil
}

func (m *Memory) Expectancy(strategy string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pnls []float64
	for _, r := range m.trades {
		if r.outcome == trade.None {
			continue
		}
		if strategy != All && r.strategy != strategy {
			continue
		}
		pnls = append(pnls, r.pnl)
	}
	return expectancy(pnls), nil
}

func (m *Memory) TradeCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trades), nil
}

func (m *Memory) Close() error { return nil }
