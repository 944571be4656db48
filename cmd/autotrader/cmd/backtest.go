package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"autotrader/backtest"
	"autotrader/config"
	"autotrader/journal"
	"autotrader/market"
	"autotrader/ml"
	"autotrader/perf"
	"autotrader/risk"
	"autotrader/signal"
	"autotrader/strategies"
	"autotrader/trade"
	"autotrader/weights"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical bars through the full decision pipeline",
	Long: `Backtest replays per-symbol bar CSVs through signal aggregation, trade
planning and exit evaluation, then prints the aggregate statistics.

Bars are read from <bars-dir>/<SYMBOL>.csv with rows of
time,open,high,low,close,volume.

Example:
  autotrader backtest --bars-dir data --symbols SPY,QQQ --db ./trades.sqlite`,
	RunE: runBacktest,
}

var (
	btBarsDir string
	btSymbols []string
	btDBPath  string
	btWeights string
	btEquity  float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBarsDir, "bars-dir", "b", "", "directory with per-symbol bar CSVs (overrides config)")
	backtestCmd.Flags().StringSliceVarP(&btSymbols, "symbols", "s", nil, "symbols to replay (overrides config)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "path to SQLite journal DB (overrides config)")
	backtestCmd.Flags().StringVarP(&btWeights, "weights", "w", "", "path to strategy weights JSON (overrides config)")
	backtestCmd.Flags().Float64VarP(&btEquity, "equity", "e", 0, "starting equity (overrides config)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btBarsDir != "" {
		cfg.Backtest.BarsDir = btBarsDir
	}
	if len(btSymbols) > 0 {
		cfg.Backtest.Symbols = btSymbols
	}
	if btDBPath != "" {
		cfg.Journal.DBPath = btDBPath
	}
	if btWeights != "" {
		cfg.Weights.Path = btWeights
	}
	if btEquity > 0 {
		cfg.Account.StartingEquity = btEquity
	}

	log := config.NewLogger(cfg.Log, os.Stderr)

	maxHold, err := cfg.Risk.ParseMaxHold()
	if err != nil {
		return err
	}

	set := strategies.Default()
	w := weights.NewStore(cfg.Weights.Path, strategyNames(set), cfg.Weights.MinTrades, cfg.Weights.Smoothing, log)
	w.Load()

	var j journal.Journal
	if cfg.Journal.DBPath != "" {
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
	} else {
		j = journal.NewMemory()
	}
	defer j.Close()

	engine := signal.NewEngine(signal.Config{
		Cooldown:         cfg.Signal.Cooldown(),
		ConfidenceCutoff: cfg.Signal.ConfidenceCutoff,
		MLThreshold:      cfg.Signal.MLCutoff,
		MLBypass:         cfg.Signal.DisableML,
		Disabled:         cfg.Signal.Disabled(),
	}, set, w, ml.Unavailable{}, log)

	planner := risk.NewPlanner(risk.PlannerConfig{
		RiskPerTradePct:  cfg.Risk.RiskPerTradePct,
		MaxTradesPerDay:  cfg.Risk.MaxTradesPerDay,
		MaxDailyLossPct:  cfg.Risk.MaxDailyLossPct,
		ATRStopMult:      cfg.Risk.ATRStopMult,
		TargetRR:         cfg.Risk.TargetRR,
		KellyCapPct:      cfg.Risk.KellyCapPct,
		ConfidenceCutoff: cfg.Signal.ConfidenceCutoff,
	}, log)

	runner := backtest.NewRunner(backtest.Config{
		StartingEquity:     cfg.Account.StartingEquity,
		WarmupBars:         cfg.Backtest.WarmupBars,
		ExitRules:          trade.ExitRules{MaxHold: maxHold, TrailRetrace: cfg.Risk.TrailRetrace},
		ContractMultiplier: cfg.Risk.ContractMultiplier,
		MaxSpreadPct:       cfg.Options.SpreadWarningPct,
	}, engine, planner, j, perf.NewTracker(), nil, log)

	series := make(map[string]market.Series, len(cfg.Backtest.Symbols))
	for _, sym := range cfg.Backtest.Symbols {
		path := filepath.Join(cfg.Backtest.BarsDir, sym+".csv")
		bars, err := market.LoadCSV(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", sym, err)
		}
		series[sym] = bars
	}

	results, err := runner.RunAll(series)
	if err != nil {
		return err
	}

	for _, res := range results {
		printResult(res)
	}

	// Reweight strategies from the journaled outcomes so the next run
	// starts from what this one learned.
	n, err := j.TradeCount()
	if err != nil {
		log.Warn().Err(err).Msg("trade count unavailable, skipping weight update")
		return nil
	}
	if err := w.Update(j.Expectancy, n); err != nil {
		log.Warn().Err(err).Msg("weight update failed")
	}
	return nil
}

func printResult(res backtest.Result) {
	fmt.Printf("=== %s ===\n", res.Symbol)
	fmt.Printf("trades:        %d (%d still open)\n", res.Trades, res.OpenAtEnd)
	fmt.Printf("final equity:  %.2f\n", res.FinalEquity)
	fmt.Printf("net pnl:       %+.2f\n", res.NetPnL)
	fmt.Printf("win rate:      %.1f%%\n", res.WinRate*100)
	fmt.Printf("profit factor: %.2f\n", res.ProfitFactor)
	fmt.Printf("expectancy:    %+.2f\n", res.Expectancy)
	fmt.Printf("avg duration:  %s\n", res.AvgDuration)
	fmt.Printf("drawdown:      %.1f%%\n", res.Health.Drawdown*100)

	if len(res.Attribution) > 0 {
		fmt.Println("by strategy:")
		for name, line := range res.Attribution {
			fmt.Printf("  %-20s %3d trades  %+10.2f  win %.1f%%\n",
				name, line.Count, line.NetPnL, line.WinRate*100)
		}
	}
	fmt.Println()
}

func strategyNames(set []strategies.Strategy) []string {
	out := make([]string, len(set))
	for i, s := range set {
		out[i] = s.Name()
	}
	return out
}
