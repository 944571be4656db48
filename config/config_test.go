package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	raw := `
account:
  starting_equity: 50000
risk:
  max_trades_per_day: 3
  max_hold: 90m
signal:
  confidence_cutoff: 0.5
  toggles:
    gamma_scalping: false
    orb: true
backtest:
  symbols: [SPY, QQQ]
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 50_000.0, cfg.Account.StartingEquity, 1e-9)
	assert.Equal(t, 3, cfg.Risk.MaxTradesPerDay)
	assert.InDelta(t, 0.5, cfg.Signal.ConfidenceCutoff, 1e-9)
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Backtest.Symbols)

	// Untouched fields keep their defaults.
	assert.InDelta(t, 0.0075, cfg.Risk.RiskPerTradePct, 1e-9)
	assert.Equal(t, 120, cfg.Signal.CooldownSec)

	hold, err := cfg.Risk.ParseMaxHold()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, hold)

	assert.Equal(t, []string{"gamma_scalping"}, cfg.Signal.Disabled())
	assert.Equal(t, 2*time.Minute, cfg.Signal.Cooldown())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero equity", func(c *Config) { c.Account.StartingEquity = 0 }},
		{"risk pct out of range", func(c *Config) { c.Risk.RiskPerTradePct = 1.5 }},
		{"zero trades per day", func(c *Config) { c.Risk.MaxTradesPerDay = 0 }},
		{"negative stop mult", func(c *Config) { c.Risk.ATRStopMult = -1 }},
		{"zero target rr", func(c *Config) { c.Risk.TargetRR = 0 }},
		{"bad max_hold", func(c *Config) { c.Risk.MaxHold = "soon" }},
		{"zero multiplier", func(c *Config) { c.Risk.ContractMultiplier = 0 }},
		{"cutoff above one", func(c *Config) { c.Signal.ConfidenceCutoff = 1.2 }},
		{"negative cooldown", func(c *Config) { c.Signal.CooldownSec = -1 }},
		{"smoothing above one", func(c *Config) { c.Weights.Smoothing = 2 }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEmptyMaxHoldDisablesTimeExit(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Risk.MaxHold = ""
	require.NoError(t, cfg.Validate())

	hold, err := cfg.Risk.ParseMaxHold()
	require.NoError(t, err)
	assert.Zero(t, hold)
}
