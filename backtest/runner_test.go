package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotrader/journal"
	"autotrader/market"
	"autotrader/ml"
	"autotrader/options"
	"autotrader/perf"
	"autotrader/regime"
	"autotrader/risk"
	"autotrader/signal"
	"autotrader/strategies"
	"autotrader/trade"
	"autotrader/weights"
)

// trigger votes long exactly when the window has grown to the given length,
// which pins the entry bar of a replay.
type trigger struct {
	name string
	at   int
}

func (s *trigger) Name() string                  { return s.name }
func (s *trigger) Regimes() []regime.Regime      { return nil }
func (s *trigger) Ready(strategies.Context) bool { return true }
func (s *trigger) Evaluate(bars market.Series, _ strategies.Context) strategies.Direction {
	if len(bars) == s.at {
		return strategies.Long
	}
	return strategies.None
}

func barAt(start time.Time, i int, close float64) market.Bar {
	return market.Bar{
		Time:  start.Add(time.Duration(i) * time.Minute),
		Open:  close, High: close, Low: close, Close: close,
		Volume: 500,
	}
}

// flatThen builds warmup flat bars at 100 followed by the given closes.
func flatThen(closes ...float64) market.Series {
	start := time.Date(2024, 4, 8, 14, 30, 0, 0, time.UTC)
	s := make(market.Series, 0, 21+len(closes))
	for i := 0; i < 21; i++ {
		s = append(s, barAt(start, i, 100))
	}
	for j, c := range closes {
		s = append(s, barAt(start, 21+j, c))
	}
	return s
}

func testRunner(set []strategies.Strategy, j journal.Journal, rules trade.ExitRules) *Runner {
	w := weights.NewStore("", nil, 10, 0.2, zerolog.Nop())
	engine := signal.NewEngine(
		signal.Config{ConfidenceCutoff: 0.5, MLBypass: true},
		set, w, ml.Bypass{}, zerolog.Nop(),
	)
	planner := risk.NewPlanner(risk.PlannerConfig{
		RiskPerTradePct:  0.0075,
		MaxTradesPerDay:  6,
		MaxDailyLossPct:  0.03,
		ATRStopMult:      1.5,
		TargetRR:         2.0,
		KellyCapPct:      0.02,
		ConfidenceCutoff: 0.65,
	}, zerolog.Nop())

	cfg := Config{
		StartingEquity:     100_000,
		WarmupBars:         20,
		ExitRules:          rules,
		ContractMultiplier: 100,
		MaxSpreadPct:       0.05,
	}
	return NewRunner(cfg, engine, planner, j, perf.NewTracker(), nil, zerolog.Nop())
}

func TestRunTargetExit(t *testing.T) {
	t.Parallel()

	// Entry at bar 20 (close 100, stop 99, target 102, size 20), target hit
	// two bars later at 102.
	bars := flatThen(101, 102)
	j := journal.NewMemory()
	r := testRunner([]strategies.Strategy{&trigger{name: "trigger", at: 21}}, j, trade.ExitRules{})

	res, err := r.Run("SPY", bars)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Trades)
	assert.Zero(t, res.OpenAtEnd)
	assert.InDelta(t, 40.0, res.NetPnL, 1e-9) // (102-100) * 20 shares
	assert.InDelta(t, 100_040.0, res.FinalEquity, 1e-9)
	assert.InDelta(t, 1.0, res.WinRate, 1e-9)
	assert.True(t, math.IsInf(res.ProfitFactor, 1))
	assert.InDelta(t, 40.0, res.Expectancy, 1e-9)
	assert.Equal(t, 2*time.Minute, res.AvgDuration)

	attr := res.Attribution["trigger"]
	assert.Equal(t, 1, attr.Count)
	assert.InDelta(t, 40.0, attr.NetPnL, 1e-9)

	n, err := j.TradeCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exp, err := j.Expectancy("trigger")
	require.NoError(t, err)
	assert.InDelta(t, 40.0, exp, 1e-9)
}

func TestRunStopExit(t *testing.T) {
	t.Parallel()

	bars := flatThen(99.5, 98.5)
	r := testRunner([]strategies.Strategy{&trigger{name: "trigger", at: 21}}, journal.NewMemory(), trade.ExitRules{})

	res, err := r.Run("SPY", bars)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Trades)
	assert.InDelta(t, -30.0, res.NetPnL, 1e-9) // (98.5-100) * 20
	assert.Zero(t, res.WinRate)
	assert.Zero(t, res.ProfitFactor)
	assert.InDelta(t, -30.0, res.Expectancy, 1e-9)
}

func TestRunMaxHoldExit(t *testing.T) {
	t.Parallel()

	// Price never reaches stop or target; the 5 minute hold limit closes it
	// at a small gain.
	bars := flatThen(100.5, 100.5, 100.5, 100.5, 100.5, 100.5, 100.5)
	rules := trade.ExitRules{MaxHold: 5 * time.Minute}
	r := testRunner([]strategies.Strategy{&trigger{name: "trigger", at: 21}}, journal.NewMemory(), rules)

	res, err := r.Run("SPY", bars)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Trades)
	assert.InDelta(t, 10.0, res.NetPnL, 1e-9) // (100.5-100) * 20
	assert.Equal(t, 5*time.Minute, res.AvgDuration)
}

func TestRunLeavesUnresolvedTradesOpen(t *testing.T) {
	t.Parallel()

	bars := flatThen(100.5)
	r := testRunner([]strategies.Strategy{&trigger{name: "trigger", at: 21}}, journal.NewMemory(), trade.ExitRules{})

	res, err := r.Run("SPY", bars)
	require.NoError(t, err)

	assert.Zero(t, res.Trades)
	assert.Equal(t, 1, res.OpenAtEnd)
	assert.Zero(t, res.NetPnL)
	assert.InDelta(t, 100_000.0, res.FinalEquity, 1e-9)
}

func TestRunNoLookAhead(t *testing.T) {
	t.Parallel()

	// Perturbing bars after the trade has resolved must not change anything
	// the replay decided earlier.
	base := flatThen(101, 102, 100, 100)
	perturbed := flatThen(101, 102, 100, 100)
	perturbed[len(perturbed)-1].Close = 500
	perturbed[len(perturbed)-1].High = 500
	perturbed[len(perturbed)-2].Close = 0.01
	perturbed[len(perturbed)-2].Low = 0.01

	set := func() []strategies.Strategy {
		return []strategies.Strategy{&trigger{name: "trigger", at: 21}}
	}

	resA, err := testRunner(set(), journal.NewMemory(), trade.ExitRules{}).Run("SPY", base)
	require.NoError(t, err)
	resB, err := testRunner(set(), journal.NewMemory(), trade.ExitRules{}).Run("SPY", perturbed)
	require.NoError(t, err)

	assert.Equal(t, resA.Trades, resB.Trades)
	assert.InDelta(t, resA.NetPnL, resB.NetPnL, 1e-9)
	assert.Equal(t, resA.AvgDuration, resB.AvgDuration)
	assert.Equal(t, resA.WinRate, resB.WinRate)
}

func TestRunTooFewBars(t *testing.T) {
	t.Parallel()

	r := testRunner([]strategies.Strategy{&trigger{name: "trigger", at: 21}}, journal.NewMemory(), trade.ExitRules{})
	_, err := r.Run("SPY", flatThen()[:10])
	assert.Error(t, err)
}

func TestRunAllIndependentPipelines(t *testing.T) {
	t.Parallel()

	j := journal.NewMemory()
	r := testRunner([]strategies.Strategy{&trigger{name: "trigger", at: 21}}, j, trade.ExitRules{})

	series := map[string]market.Series{
		"QQQ": flatThen(101, 102),
		"SPY": flatThen(99.5, 98.5),
	}
	results, err := r.RunAll(series)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Sorted by symbol.
	assert.Equal(t, "QQQ", results[0].Symbol)
	assert.Equal(t, "SPY", results[1].Symbol)

	assert.InDelta(t, 40.0, results[0].NetPnL, 1e-9)
	assert.InDelta(t, -30.0, results[1].NetPnL, 1e-9)

	// Each pipeline carries its own account.
	assert.InDelta(t, 100_040.0, results[0].FinalEquity, 1e-9)
	assert.InDelta(t, 99_970.0, results[1].FinalEquity, 1e-9)

	n, err := j.TradeCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

type failingChains struct{}

func (failingChains) Chain(string, time.Time) (options.Chain, error) {
	return nil, errors.New("fetch failed")
}

func TestChainFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	w := weights.NewStore("", nil, 10, 0.2, zerolog.Nop())
	engine := signal.NewEngine(
		signal.Config{ConfidenceCutoff: 0.5, MLBypass: true},
		[]strategies.Strategy{&trigger{name: "trigger", at: 21}},
		w, ml.Bypass{}, zerolog.Nop(),
	)
	planner := risk.NewPlanner(risk.PlannerConfig{
		RiskPerTradePct: 0.0075, MaxTradesPerDay: 6, MaxDailyLossPct: 0.03,
		ATRStopMult: 1.5, TargetRR: 2.0, KellyCapPct: 0.02, ConfidenceCutoff: 0.65,
	}, zerolog.Nop())

	cfg := Config{StartingEquity: 100_000, WarmupBars: 20, ContractMultiplier: 100, MaxSpreadPct: 0.05}
	r := NewRunner(cfg, engine, planner, journal.NewMemory(), perf.NewTracker(), failingChains{}, zerolog.Nop())

	res, err := r.Run("SPY", flatThen(101, 102))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Trades)
}

func TestChainContextDerivation(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 4, 8, 15, 0, 0, 0, time.UTC)
	expiry := now.Add(48 * time.Hour)
	ch := options.Chain{
		{Strike: 100, Expiry: expiry, Type: options.Call, Bid: 2.0, Ask: 2.1, IV: 0.25, Gamma: 0.02, OpenInterest: 1000},
		{Strike: 100, Expiry: expiry, Type: options.Put, Bid: 1.9, Ask: 2.0, IV: 0.25, Gamma: 0.02, OpenInterest: 800},
	}

	ctx, iv := chainContext(ch, 100, now)
	assert.InDelta(t, 0.25, iv, 1e-9)
	assert.True(t, ctx.HasExpectedMove)
	assert.True(t, ctx.HasGamma)
	assert.Greater(t, ctx.ExpectedMove, 0.0)

	// Dealer gamma: calls long, puts short.
	want := 0.02*1000*100*100 - 0.02*800*100*100
	assert.InDelta(t, want, ctx.GammaExposure, 1e-6)
}

func TestChainContextEmptyChain(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 4, 8, 15, 0, 0, 0, time.UTC)
	ctx, iv := chainContext(nil, 100, now)
	assert.Zero(t, iv)
	assert.False(t, ctx.HasExpectedMove)
	assert.False(t, ctx.HasGamma)
	assert.InDelta(t, 100.0, ctx.Price, 1e-9)
}
