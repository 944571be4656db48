// Package journal persists trade records and answers the expectancy queries
// that drive adaptive strategy weighting. The engine writes through this
// interface and never blocks its decision path on persistence: a failed
// write is logged by the caller and the in-memory copy stays authoritative.
package journal

import (
	"autotrader/ml"
	"autotrader/trade"
)

// Journal is the write path the engine consumes plus the expectancy read
// path the weight optimizer consumes.
type Journal interface {
	// Save appends a newly opened trade with its feature snapshot.
	Save(t *trade.Trade, features ml.Features) error

	// UpdateOutcome records the terminal outcome and realized PnL.
	UpdateOutcome(id string, outcome trade.Outcome, pnl float64) error

	// Expectancy returns win_rate*avg_win - (1-win_rate)*avg_loss over
	// closed trades for one strategy, or for every strategy with "all".
	Expectancy(strategy string) (float64, error)

	// TradeCount returns the number of journaled trades.
	TradeCount() (int, error)

	Close() error
}

// All selects every strategy in Expectancy queries.
const All = "all"

// expectancy computes the expectancy statistic over closed-trade PnLs.
// With no losses the average loss defaults to 1 so a young, all-winning
// book does not report an infinite edge.
func expectancy(pnls []float64) float64 {
	if len(pnls) == 0 {
		return 0
	}

	var winSum, lossSum float64
	var wins, losses int
	for _, p := range pnls {
		if p > 0 {
			winSum += p
			wins++
		} else {
			lossSum -= p
			losses++
		}
	}

	winRate := float64(wins) / float64(len(pnls))

	avgWin := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	avgLoss := 1.0
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}

	return winRate*avgWin - (1-winRate)*avgLoss
}
