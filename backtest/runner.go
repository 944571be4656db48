// Package backtest replays historical bars through the full decision
// pipeline: signal aggregation, trade planning, exit evaluation, journaling
// and performance tracking. The replay is strictly causal: the engine only
// ever sees the bar window up to and including the current bar.
package backtest

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"autotrader/journal"
	"autotrader/market"
	"autotrader/ml"
	"autotrader/perf"
	"autotrader/risk"
	"autotrader/signal"
	"autotrader/strategies"
	"autotrader/trade"
)

// Config tunes the replay loop.
type Config struct {
	StartingEquity float64

	// WarmupBars is the index of the first bar the engine evaluates. It must
	// cover the longest indicator lookback.
	WarmupBars int

	ExitRules trade.ExitRules

	// ContractMultiplier applies to options trades on close; trades without
	// a contract settle at multiplier 1.
	ContractMultiplier float64

	// MaxSpreadPct filters chain snapshots before anything downstream sees
	// them.
	MaxSpreadPct float64
}

// Result is the aggregate statistics of one symbol's replay.
type Result struct {
	Symbol string

	Trades      int // closed trades
	OpenAtEnd   int
	FinalEquity float64
	NetPnL      float64

	WinRate      float64
	ProfitFactor float64 // +Inf when there are gains and no losses
	Expectancy   float64
	AvgDuration  time.Duration

	Attribution map[string]perf.StrategyPnL
	Health      perf.Health
}

// Runner owns the replay loop. One Runner may serve several symbols; every
// Run gets its own Account and open-trade set.
type Runner struct {
	cfg     Config
	engine  *signal.Engine
	planner *risk.Planner
	journal journal.Journal
	tracker *perf.Tracker
	chains  ChainProvider // nil disables options context
	log     zerolog.Logger
}

func NewRunner(cfg Config, engine *signal.Engine, planner *risk.Planner, j journal.Journal, tracker *perf.Tracker, chains ChainProvider, log zerolog.Logger) *Runner {
	if j == nil {
		j = journal.NewMemory()
	}
	if tracker == nil {
		tracker = perf.NewTracker()
	}
	return &Runner{
		cfg:     cfg,
		engine:  engine,
		planner: planner,
		journal: j,
		tracker: tracker,
		chains:  chains,
		log:     log,
	}
}

// Run replays one symbol's bars. Trades still open at the last bar are left
// open and excluded from the closed-trade statistics.
func (r *Runner) Run(symbol string, bars market.Series) (Result, error) {
	if len(bars) <= r.cfg.WarmupBars {
		return Result{}, fmt.Errorf("backtest %s: %d bars, need more than %d warmup", symbol, len(bars), r.cfg.WarmupBars)
	}

	acct := risk.NewAccount(r.cfg.StartingEquity, bars[r.cfg.WarmupBars].Time)

	var open []*trade.Trade
	var closed []*trade.Trade
	var durations []time.Duration

	for i := r.cfg.WarmupBars; i < len(bars); i++ {
		window := bars.Window(i)
		bar := bars[i]
		now := bar.Time

		ctx, iv := r.context(symbol, bar.Close, now)

		res := r.engine.Evaluate(symbol, window, ctx, iv, now)
		if !res.Blocked {
			if t := r.openTrade(acct, symbol, res, bar.Close, window, now); t != nil {
				open = append(open, t)
			}
		}

		remaining := open[:0]
		for _, t := range open {
			r.tracker.Observe(t, bar.Close)

			outcome := trade.CheckExit(t, bar.Close, now, r.cfg.ExitRules)
			if outcome == trade.None {
				remaining = append(remaining, t)
				continue
			}

			t.Close(bar.Close, outcome, r.multiplier(t), now)
			acct.UpdatePnL(t.PnL)
			r.tracker.CloseTrade(t, now)
			if err := r.journal.UpdateOutcome(t.ID, t.Outcome, t.PnL); err != nil {
				r.log.Warn().Err(err).Str("trade_id", t.ID).Msg("journal outcome failed")
			}

			durations = append(durations, now.Sub(t.OpenedAt))
			closed = append(closed, t)

			r.log.Debug().
				Str("trade_id", t.ID).
				Str("outcome", t.Outcome.String()).
				Float64("pnl", t.PnL).
				Msg("trade closed")
		}
		open = remaining
	}

	return r.summarize(symbol, acct, closed, len(open), durations), nil
}

// RunAll replays every symbol as an independent pipeline. Symbols do not
// interact: each owns its Account and open-trade set, and the shared engine
// state (cooldowns) is already partitioned by symbol.
func (r *Runner) RunAll(series map[string]market.Series) ([]Result, error) {
	symbols := make([]string, 0, len(series))
	for s := range series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	results := make([]Result, len(symbols))
	errs := make([]error, len(symbols))

	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			results[i], errs[i] = r.Run(sym, series[sym])
		}(i, sym)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// context builds the options-derived market context for one tick. A chain
// fetch failure means no options context this tick, never a fatal error.
func (r *Runner) context(symbol string, spot float64, now time.Time) (strategies.Context, float64) {
	if r.chains == nil {
		return strategies.Context{Price: spot, UnderlyingPrice: spot}, 0
	}

	ch, err := r.chains.Chain(symbol, now)
	if err != nil {
		r.log.Debug().Err(err).Str("symbol", symbol).Msg("no chain this tick")
		return strategies.Context{Price: spot, UnderlyingPrice: spot}, 0
	}
	return chainContext(ch.FilterSpread(r.cfg.MaxSpreadPct), spot, now)
}

func (r *Runner) openTrade(acct *risk.Account, symbol string, res signal.Result, entry float64, window market.Series, now time.Time) *trade.Trade {
	t, err := r.planner.Plan(acct, symbol, res.Strategy, entry, window, res.Confidence, now)
	if err != nil {
		r.log.Debug().Err(err).Str("symbol", symbol).Msg("plan rejected")
		return nil
	}

	r.tracker.Track(t)
	if err := r.journal.Save(t, ml.Extract(window, 0)); err != nil {
		r.log.Warn().Err(err).Str("trade_id", t.ID).Msg("journal save failed")
	}
	return t
}

func (r *Runner) multiplier(t *trade.Trade) float64 {
	if t.Contract == "" {
		return 1
	}
	return r.cfg.ContractMultiplier
}

func (r *Runner) summarize(symbol string, acct *risk.Account, closed []*trade.Trade, openAtEnd int, durations []time.Duration) Result {
	res := Result{
		Symbol:      symbol,
		Trades:      len(closed),
		OpenAtEnd:   openAtEnd,
		FinalEquity: acct.Equity,
		NetPnL:      acct.Equity - acct.StartingEquity,
		Attribution: perf.Attribution(closed),
		Health:      perf.CapitalHealth(closed, acct.Equity, acct.StartingEquity),
	}
	if len(closed) == 0 {
		return res
	}

	var wins int
	var grossGain, grossLoss float64
	for _, t := range closed {
		if t.PnL > 0 {
			wins++
			grossGain += t.PnL
		} else {
			grossLoss -= t.PnL
		}
	}
	res.WinRate = float64(wins) / float64(len(closed))

	switch {
	case grossLoss > 0:
		res.ProfitFactor = grossGain / grossLoss
	case grossGain > 0:
		res.ProfitFactor = math.Inf(1)
	}

	avgWin := 0.0
	if wins > 0 {
		avgWin = grossGain / float64(wins)
	}
	avgLoss := 1.0
	if losses := len(closed) - wins; losses > 0 {
		avgLoss = grossLoss / float64(losses)
	}
	res.Expectancy = res.WinRate*avgWin - (1-res.WinRate)*avgLoss

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	res.AvgDuration = total / time.Duration(len(durations))

	return res
}
