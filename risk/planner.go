package risk

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"autotrader/indicators"
	"autotrader/internal/id"
	"autotrader/market"
	"autotrader/trade"
)

// ErrRejected reports a plan rejected by a guardrail. It wraps the specific
// reason; callers usually only care that no trade was produced.
var ErrRejected = errors.New("trade rejected")

const (
	atrPeriod = 14

	// stopFloorPct backstops the stop distance when ATR is unavailable or
	// zero (flat series). A stop distance of zero would make position
	// sizing divide by zero and a stop equal to entry.
	stopFloorPct = 0.01
)

// PlannerConfig is the risk parameter set for trade construction.
type PlannerConfig struct {
	RiskPerTradePct  float64 // fraction of equity risked per trade
	MaxTradesPerDay  int
	MaxDailyLossPct  float64
	ATRStopMult      float64 // stop distance in ATRs
	TargetRR         float64 // target distance as a multiple of stop distance
	KellyCapPct      float64 // notional cap as a fraction of equity
	ConfidenceCutoff float64
}

// Planner turns an approved signal into a risk-bounded trade, or rejects it.
type Planner struct {
	cfg PlannerConfig
	log zerolog.Logger
}

// NewPlanner creates a planner. Use zerolog.Nop() to silence it.
func NewPlanner(cfg PlannerConfig, log zerolog.Logger) *Planner {
	return &Planner{cfg: cfg, log: log}
}

// Plan builds a trade for the given entry price and signal confidence.
// Steps, in order: account guardrails, stop distance (ATR with a 1%-of-entry
// floor), risk-based size, Kelly notional cap, integer floor with a minimum
// of one unit, confidence cutoff, stop/target construction on the side
// implied by the confidence sign. Any rejection returns a nil trade and an
// error wrapping ErrRejected.
func (p *Planner) Plan(acct *Account, symbol, strategy string, entry float64, bars market.Series, confidence float64, now time.Time) (*trade.Trade, error) {
	if entry <= 0 {
		return nil, fmt.Errorf("%w: non-positive entry %.4f", ErrRejected, entry)
	}
	if !acct.CanTrade(now, p.cfg.MaxTradesPerDay, p.cfg.MaxDailyLossPct) {
		p.log.Debug().Str("symbol", symbol).Msg("plan rejected: account guardrails")
		return nil, fmt.Errorf("%w: account guardrails", ErrRejected)
	}

	stopDist := p.stopDistance(entry, bars)

	riskAmt := acct.Equity * p.cfg.RiskPerTradePct
	riskSize := riskAmt / stopDist

	kellySize := acct.Equity * p.cfg.KellyCapPct / entry

	size := int(math.Floor(math.Min(riskSize, kellySize)))
	if size < 1 {
		p.log.Debug().
			Str("symbol", symbol).
			Float64("risk_size", riskSize).
			Float64("kelly_size", kellySize).
			Msg("plan rejected: size below one unit")
		return nil, fmt.Errorf("%w: size below one unit", ErrRejected)
	}

	if math.Abs(confidence) < p.cfg.ConfidenceCutoff {
		p.log.Debug().
			Str("symbol", symbol).
			Float64("confidence", confidence).
			Msg("plan rejected: confidence below cutoff")
		return nil, fmt.Errorf("%w: confidence %.2f below cutoff %.2f",
			ErrRejected, confidence, p.cfg.ConfidenceCutoff)
	}

	var stop, target float64
	if confidence > 0 {
		stop = entry - stopDist
		target = entry + stopDist*p.cfg.TargetRR
	} else {
		stop = entry + stopDist
		target = entry - stopDist*p.cfg.TargetRR
	}

	t := &trade.Trade{
		ID:           id.New(),
		Symbol:       symbol,
		Strategy:     strategy,
		OpenedAt:     now,
		Entry:        entry,
		Stop:         stop,
		Target:       target,
		TrailingStop: stop,
		Size:         size,
		Confidence:   confidence,
	}

	p.log.Debug().
		Str("trade_id", t.ID).
		Str("symbol", symbol).
		Int("size", size).
		Float64("entry", entry).
		Float64("stop", stop).
		Float64("target", target).
		Msg("trade planned")

	return t, nil
}

// stopDistance is ATR(14) times the configured multiplier, falling back to
// 1% of the entry price when ATR is unavailable or non-positive. The result
// is always positive.
func (p *Planner) stopDistance(entry float64, bars market.Series) float64 {
	atr, err := indicators.ATR(bars, atrPeriod)
	if err != nil || atr <= 0 {
		return entry * stopFloorPct
	}
	dist := atr * p.cfg.ATRStopMult
	if dist <= 0 {
		return entry * stopFloorPct
	}
	return dist
}
