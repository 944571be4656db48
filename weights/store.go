// Package weights persists the per-strategy weighting the aggregator applies
// to strategy votes. Weights are updated from trailing expectancy by a single
// writer; readers may observe a value that is at most one update cycle stale.
package weights

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// MinWeight and MaxWeight clamp the smoothing update so a hot streak
	// cannot hand one strategy the whole book.
	MinWeight = -3.0
	MaxWeight = 3.0

	defaultWeight = 1.0
)

// ExpectancyFunc returns trailing expectancy for one strategy, as provided
// by the journal.
type ExpectancyFunc func(strategy string) (float64, error)

// Store holds strategy weights with atomic file persistence.
type Store struct {
	path      string
	minTrades int
	alpha     float64
	log       zerolog.Logger

	mu      sync.RWMutex
	weights map[string]float64
}

// NewStore creates a store with weight 1.0 for each named strategy. path may
// be empty for an in-memory store (backtests). minTrades gates updates;
// alpha is the expectancy smoothing constant.
func NewStore(path string, names []string, minTrades int, alpha float64, log zerolog.Logger) *Store {
	w := make(map[string]float64, len(names))
	for _, n := range names {
		w[n] = defaultWeight
	}
	return &Store{
		path:      path,
		minTrades: minTrades,
		alpha:     alpha,
		log:       log,
		weights:   w,
	}
}

// Get returns the weight for a strategy, 1.0 when unknown.
func (s *Store) Get(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.weights[name]; ok {
		return w
	}
	return defaultWeight
}

// Snapshot returns a copy of all weights.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.weights))
	for k, v := range s.weights {
		out[k] = v
	}
	return out
}

// Load merges persisted weights over the defaults. A missing or malformed
// file is not an error: startup proceeds on defaults.
func (s *Store) Load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("weights unreadable, using defaults")
		}
		return
	}

	var loaded map[string]float64
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("weights malformed, using defaults")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range loaded {
		s.weights[k] = clamp(v)
	}
}

// Update recomputes every weight from trailing expectancy:
//
//	w <- alpha*expectancy + (1-alpha)*w, clamped to [MinWeight, MaxWeight]
//
// The update is a no-op until the journal holds at least minTrades trades;
// below the threshold weights are neither changed nor persisted. A strategy
// whose expectancy is exactly 0 (typically no closed trades yet) keeps its
// current weight.
func (s *Store) Update(expectancy ExpectancyFunc, journaledTrades int) error {
	if journaledTrades < s.minTrades {
		s.log.Debug().
			Int("trades", journaledTrades).
			Int("required", s.minTrades).
			Msg("skipping weight update, not enough samples")
		return nil
	}

	s.mu.Lock()
	for name, prev := range s.weights {
		exp, err := expectancy(name)
		if err != nil {
			s.log.Warn().Err(err).Str("strategy", name).Msg("expectancy unavailable")
			continue
		}
		if exp == 0 {
			continue
		}
		s.weights[name] = clamp(s.alpha*exp + (1-s.alpha)*prev)
	}
	snapshot := make(map[string]float64, len(s.weights))
	for k, v := range s.weights {
		snapshot[k] = v
	}
	s.mu.Unlock()

	return s.save(snapshot)
}

// save writes the weights atomically: temp file in the same directory, then
// rename. A crash mid-write leaves the previous file intact.
func (s *Store) save(snapshot map[string]float64) error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "weights-*.json")
	if err != nil {
		return fmt.Errorf("create temp weights: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close weights: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace weights: %w", err)
	}
	return nil
}

func clamp(v float64) float64 {
	if v > MaxWeight {
		return MaxWeight
	}
	if v < MinWeight {
		return MinWeight
	}
	return v
}
