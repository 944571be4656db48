// Package signal combines strategy votes into one scored decision per tick.
// The Engine is the only stateful piece: it remembers the last signal time
// per symbol for cooldown gating. Everything else it touches is read-only
// for the duration of an evaluation.
package signal

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"autotrader/market"
	"autotrader/ml"
	"autotrader/regime"
	"autotrader/strategies"
	"autotrader/weights"
)

// Block reasons reported in Result.Reason.
const (
	ReasonCooldown      = "cooldown"
	ReasonNoData        = "no_data"
	ReasonNoStrategies  = "no_strategies"
	ReasonLowConfidence = "low_confidence"
	ReasonMLFilter      = "ml_filter"
)

// Config tunes the aggregator. Zero values disable the corresponding gate.
type Config struct {
	// Cooldown is the minimum interval between actionable signals for one
	// symbol.
	Cooldown time.Duration

	// ConfidenceCutoff blocks signals whose normalized score magnitude falls
	// below it.
	ConfidenceCutoff float64

	// MLThreshold blocks signals the model scores below it. MLBypass skips
	// the model entirely for every symbol.
	MLThreshold float64
	MLBypass    bool

	// Disabled lists strategy names excluded from aggregation.
	Disabled []string
}

// Result is the outcome of one evaluation. A blocked result carries the
// reason and whatever was computed before the gate tripped.
type Result struct {
	Symbol string
	Regime regime.Regime

	// Score is the raw weighted vote sum. Confidence is Score normalized by
	// the sum of absolute weights of the participating strategies, in
	// [-1, 1]; its sign is the trade direction.
	Score      float64
	Confidence float64

	// Signals maps each participating strategy to its vote. Strategy names
	// the dominant contributor, the participant whose weighted vote pushes
	// hardest in the score's direction; it is what the planner journals the
	// trade under.
	Signals  map[string]strategies.Direction
	Strategy string

	// MLProb is the model probability, 0 when the model was bypassed or had
	// no opinion.
	MLProb float64

	Blocked bool
	Reason  string
}

// Engine aggregates strategy votes under regime gating, adaptive weights,
// the ML filter, and per-symbol cooldown.
type Engine struct {
	cfg       Config
	set       []strategies.Strategy
	weights   *weights.Store
	predictor ml.Predictor
	log       zerolog.Logger

	disabled map[string]bool

	mu         sync.Mutex
	lastSignal map[string]time.Time
}

func NewEngine(cfg Config, set []strategies.Strategy, w *weights.Store, p ml.Predictor, log zerolog.Logger) *Engine {
	disabled := make(map[string]bool, len(cfg.Disabled))
	for _, name := range cfg.Disabled {
		disabled[name] = true
	}
	if p == nil {
		p = ml.Unavailable{}
	}
	return &Engine{
		cfg:        cfg,
		set:        set,
		weights:    w,
		predictor:  p,
		log:        log,
		disabled:   disabled,
		lastSignal: make(map[string]time.Time),
	}
}

// Evaluate scores one symbol at one tick. The gates run in a fixed order:
// cooldown, data, regime-gated strategy votes, ML filter, confidence cutoff.
// Only a passing result arms the cooldown.
func (e *Engine) Evaluate(symbol string, bars market.Series, ctx strategies.Context, impliedVol float64, now time.Time) Result {
	res := Result{Symbol: symbol, Signals: map[string]strategies.Direction{}}

	if e.onCooldown(symbol, now) {
		return e.block(res, ReasonCooldown)
	}

	last, ok := bars.Last()
	if !ok {
		return e.block(res, ReasonNoData)
	}
	if ctx.Price == 0 {
		ctx.Price = last.Close
	}
	if ctx.UnderlyingPrice == 0 {
		ctx.UnderlyingPrice = ctx.Price
	}

	res.Regime = regime.Classify(bars, impliedVol)

	var sumAbs float64
	contribs := make(map[string]float64)
	for _, s := range e.set {
		if e.disabled[s.Name()] {
			continue
		}
		if !tradesIn(s, res.Regime) {
			continue
		}
		if !s.Ready(ctx) {
			continue
		}

		dir := s.Evaluate(bars, ctx)
		w := e.weights.Get(s.Name())

		res.Signals[s.Name()] = dir
		contribs[s.Name()] = w * float64(dir)
		res.Score += w * float64(dir)
		sumAbs += abs(w)
	}

	if sumAbs == 0 {
		return e.block(res, ReasonNoStrategies)
	}
	res.Confidence = res.Score / sumAbs
	res.Strategy = dominant(contribs, res.Score)

	if !e.cfg.MLBypass {
		prob, err := e.predictor.Predict(bars, ctx)
		switch {
		case errors.Is(err, ml.ErrNoModel):
			// No opinion, filter does not apply.
		case err != nil:
			e.log.Warn().Err(err).Str("symbol", symbol).Msg("model unavailable, skipping filter")
		default:
			res.MLProb = prob
			if prob < e.cfg.MLThreshold {
				return e.block(res, ReasonMLFilter)
			}
		}
	}

	if abs(res.Confidence) < e.cfg.ConfidenceCutoff {
		return e.block(res, ReasonLowConfidence)
	}

	e.mu.Lock()
	e.lastSignal[symbol] = now
	e.mu.Unlock()

	e.log.Debug().
		Str("symbol", symbol).
		Str("regime", string(res.Regime)).
		Float64("score", res.Score).
		Float64("confidence", res.Confidence).
		Msg("signal")
	return res
}

func (e *Engine) onCooldown(symbol string, now time.Time) bool {
	if e.cfg.Cooldown <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	last, ok := e.lastSignal[symbol]
	return ok && now.Sub(last) < e.cfg.Cooldown
}

func (e *Engine) block(res Result, reason string) Result {
	res.Blocked = true
	res.Reason = reason
	e.log.Debug().Str("symbol", res.Symbol).Str("reason", reason).Msg("signal blocked")
	return res
}

// dominant returns the strategy whose weighted vote pushes hardest in the
// score's direction, ties broken by name for determinism. Empty when the
// score is zero.
func dominant(contribs map[string]float64, score float64) string {
	if score == 0 {
		return ""
	}
	sign := 1.0
	if score < 0 {
		sign = -1
	}

	best := ""
	bestAligned := 0.0
	for name, c := range contribs {
		aligned := c * sign
		if aligned > bestAligned || (aligned == bestAligned && aligned > 0 && name < best) {
			best = name
			bestAligned = aligned
		}
	}
	return best
}

func tradesIn(s strategies.Strategy, r regime.Regime) bool {
	allowed := s.Regimes()
	if allowed == nil {
		return true
	}
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
