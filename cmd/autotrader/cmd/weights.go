package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"autotrader/config"
	"autotrader/journal"
	"autotrader/strategies"
	"autotrader/weights"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show or update the adaptive strategy weights",
	Long: `Weights prints the per-strategy weights the signal aggregator applies.

With --update, the weights are recomputed from the trailing expectancy of
the journaled trades and persisted back.

Example:
  autotrader weights --weights ./weights.json
  autotrader weights --weights ./weights.json --update --db ./trades.sqlite`,
	RunE: runWeights,
}

var (
	wPath   string
	wDBPath string
	wUpdate bool
)

func init() {
	rootCmd.AddCommand(weightsCmd)

	weightsCmd.Flags().StringVarP(&wPath, "weights", "w", "", "path to strategy weights JSON (overrides config)")
	weightsCmd.Flags().StringVarP(&wDBPath, "db", "d", "", "path to SQLite journal DB (overrides config)")
	weightsCmd.Flags().BoolVarP(&wUpdate, "update", "u", false, "recompute weights from journaled expectancy")
}

func runWeights(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if wPath != "" {
		cfg.Weights.Path = wPath
	}
	if wDBPath != "" {
		cfg.Journal.DBPath = wDBPath
	}

	log := config.NewLogger(cfg.Log, os.Stderr)

	w := weights.NewStore(cfg.Weights.Path, strategyNames(strategies.Default()), cfg.Weights.MinTrades, cfg.Weights.Smoothing, log)
	w.Load()

	if wUpdate {
		if cfg.Journal.DBPath == "" {
			return fmt.Errorf("weights --update requires a journal db")
		}
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()

		n, err := j.TradeCount()
		if err != nil {
			return err
		}
		if err := w.Update(j.Expectancy, n); err != nil {
			return err
		}
		fmt.Printf("weights updated from %d journaled trades\n", n)
	}

	snapshot := w.Snapshot()
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%-20s %+.4f\n", name, snapshot[name])
	}
	return nil
}
