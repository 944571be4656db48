package cmd

import (
	"github.com/spf13/cobra"

	"autotrader/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "autotrader",
	Short: "An adaptive options and equity trading decision engine",
	Long: `Autotrader is a trading decision engine and research platform.

It provides tools for:
  - Backtesting the full signal/risk/exit pipeline over historical bars
  - Regime-gated multi-strategy signal aggregation
  - Adaptive strategy weighting from journaled expectancy
  - Risk-bounded trade planning with ATR stops and Kelly caps
  - SQLite trade journaling and performance attribution`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML), defaults apply when omitted")
}

// loadConfig reads the configured YAML file, or the defaults without one.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}
