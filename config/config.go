// Package config loads the engine configuration from YAML. Validation errors
// here are the only fatal error class in the system: everything downstream
// degrades, but a bad config refuses to start.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Account  AccountConfig  `yaml:"account"`
	Risk     RiskConfig     `yaml:"risk"`
	Signal   SignalConfig   `yaml:"signal"`
	Options  OptionsConfig  `yaml:"options"`
	Backtest BacktestConfig `yaml:"backtest"`
	Journal  JournalConfig  `yaml:"journal"`
	Weights  WeightsConfig  `yaml:"weights"`
	Log      LogConfig      `yaml:"log"`
}

type AccountConfig struct {
	StartingEquity float64 `yaml:"starting_equity"`
}

type RiskConfig struct {
	RiskPerTradePct    float64 `yaml:"risk_per_trade_pct"`
	MaxTradesPerDay    int     `yaml:"max_trades_per_day"`
	MaxDailyLossPct    float64 `yaml:"max_daily_loss_pct"`
	ATRStopMult        float64 `yaml:"atr_stop_mult"`
	TargetRR           float64 `yaml:"target_rr"`
	KellyCapPct        float64 `yaml:"kelly_cap_pct"`
	TrailRetrace       float64 `yaml:"trail_retrace"`
	MaxHold            string  `yaml:"max_hold"` // e.g. "4h", "45m"
	ContractMultiplier float64 `yaml:"contract_multiplier"`
}

// ParseMaxHold converts the max_hold string to a duration. Empty disables
// time exits.
func (r RiskConfig) ParseMaxHold() (time.Duration, error) {
	if r.MaxHold == "" {
		return 0, nil
	}
	return time.ParseDuration(r.MaxHold)
}

type SignalConfig struct {
	ConfidenceCutoff float64         `yaml:"confidence_cutoff"`
	CooldownSec      int             `yaml:"cooldown_sec"`
	MLCutoff         float64         `yaml:"ml_cutoff"`
	DisableML        bool            `yaml:"disable_ml"`
	Toggles          map[string]bool `yaml:"toggles"`
}

// Cooldown returns the cooldown as a duration.
func (s SignalConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownSec) * time.Second
}

// Disabled lists the strategies toggled off. Strategies absent from the
// toggle map stay enabled.
func (s SignalConfig) Disabled() []string {
	var out []string
	for name, enabled := range s.Toggles {
		if !enabled {
			out = append(out, name)
		}
	}
	return out
}

type OptionsConfig struct {
	SpreadWarningPct float64 `yaml:"spread_warning_pct"`
	ConservativeFill bool    `yaml:"conservative_fill"`
}

type BacktestConfig struct {
	Symbols    []string `yaml:"symbols"`
	WarmupBars int      `yaml:"warmup_bars"`
	BarsDir    string   `yaml:"bars_dir"`
}

type JournalConfig struct {
	DBPath string `yaml:"db_path"`
}

type WeightsConfig struct {
	Path      string  `yaml:"path"`
	MinTrades int     `yaml:"min_trades"`
	Smoothing float64 `yaml:"smoothing"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartingEquity: 12_508.0,
		},
		Risk: RiskConfig{
			RiskPerTradePct:    0.0075,
			MaxTradesPerDay:    6,
			MaxDailyLossPct:    0.03,
			ATRStopMult:        1.5,
			TargetRR:           2.0,
			KellyCapPct:        0.02,
			TrailRetrace:       0.5,
			MaxHold:            "4h",
			ContractMultiplier: 100,
		},
		Signal: SignalConfig{
			ConfidenceCutoff: 0.65,
			CooldownSec:      120,
			MLCutoff:         0.55,
			DisableML:        true,
		},
		Options: OptionsConfig{
			SpreadWarningPct: 0.05,
			ConservativeFill: true,
		},
		Backtest: BacktestConfig{
			Symbols:    []string{"SPY"},
			WarmupBars: 30,
		},
		Weights: WeightsConfig{
			MinTrades: 10,
			Smoothing: 0.2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Account.StartingEquity <= 0 {
		return fmt.Errorf("account.starting_equity must be positive")
	}
	if c.Risk.RiskPerTradePct <= 0 || c.Risk.RiskPerTradePct >= 1 {
		return fmt.Errorf("risk.risk_per_trade_pct must be in (0, 1)")
	}
	if c.Risk.MaxTradesPerDay <= 0 {
		return fmt.Errorf("risk.max_trades_per_day must be positive")
	}
	if c.Risk.MaxDailyLossPct <= 0 || c.Risk.MaxDailyLossPct >= 1 {
		return fmt.Errorf("risk.max_daily_loss_pct must be in (0, 1)")
	}
	if c.Risk.ATRStopMult <= 0 {
		return fmt.Errorf("risk.atr_stop_mult must be positive")
	}
	if c.Risk.TargetRR <= 0 {
		return fmt.Errorf("risk.target_rr must be positive")
	}
	if c.Risk.KellyCapPct <= 0 || c.Risk.KellyCapPct >= 1 {
		return fmt.Errorf("risk.kelly_cap_pct must be in (0, 1)")
	}
	if c.Risk.TrailRetrace < 0 || c.Risk.TrailRetrace > 1 {
		return fmt.Errorf("risk.trail_retrace must be in [0, 1]")
	}
	if _, err := c.Risk.ParseMaxHold(); err != nil {
		return fmt.Errorf("risk.max_hold: %w", err)
	}
	if c.Risk.ContractMultiplier <= 0 {
		return fmt.Errorf("risk.contract_multiplier must be positive")
	}
	if c.Signal.ConfidenceCutoff < 0 || c.Signal.ConfidenceCutoff > 1 {
		return fmt.Errorf("signal.confidence_cutoff must be in [0, 1]")
	}
	if c.Signal.CooldownSec < 0 {
		return fmt.Errorf("signal.cooldown_sec must not be negative")
	}
	if c.Signal.MLCutoff < 0 || c.Signal.MLCutoff > 1 {
		return fmt.Errorf("signal.ml_cutoff must be in [0, 1]")
	}
	if c.Backtest.WarmupBars < 0 {
		return fmt.Errorf("backtest.warmup_bars must not be negative")
	}
	if c.Weights.MinTrades < 0 {
		return fmt.Errorf("weights.min_trades must not be negative")
	}
	if c.Weights.Smoothing < 0 || c.Weights.Smoothing > 1 {
		return fmt.Errorf("weights.smoothing must be in [0, 1]")
	}
	return nil
}
