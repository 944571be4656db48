package trade

import "time"

// ExitRules parameterizes the per-tick exit evaluation.
type ExitRules struct {
	// MaxHold closes positions held longer than this. Zero disables the
	// time exit.
	MaxHold time.Duration

	// TrailRetrace is the fraction of the favorable excursion given back
	// before the trailing stop triggers. Zero disables trailing.
	TrailRetrace float64
}

// CheckExit evaluates one open trade against the current price. Checks run
// in fixed priority order so a bar that breaches several levels still emits
// exactly one outcome:
//
//	stop > target > trailing stop > max hold > expiry
//
// The trailing stop first ratchets toward price on favorable excursion, then
// is tested; it never loosens. Returns None while the trade stays open. Once
// any outcome is returned the caller must close the trade and stop
// evaluating it.
func CheckExit(t *Trade, price float64, now time.Time, rules ExitRules) Outcome {
	if !t.IsOpen() {
		return None
	}

	long := t.Side() > 0

	if long && price <= t.Stop || !long && price >= t.Stop {
		return Stop
	}
	if long && price >= t.Target || !long && price <= t.Target {
		return Target
	}

	if rules.TrailRetrace > 0 {
		if long && price > t.Entry {
			candidate := price - rules.TrailRetrace*(price-t.Entry)
			if candidate > t.TrailingStop {
				t.TrailingStop = candidate
			}
		} else if !long && price < t.Entry {
			candidate := price + rules.TrailRetrace*(t.Entry-price)
			if candidate < t.TrailingStop {
				t.TrailingStop = candidate
			}
		}
		// Trailing breach only counts once the stop has ratcheted past the
		// hard stop, otherwise the hard stop owns the level.
		if long && t.TrailingStop > t.Stop && price <= t.TrailingStop {
			return Trail
		}
		if !long && t.TrailingStop < t.Stop && price >= t.TrailingStop {
			return Trail
		}
	}

	if rules.MaxHold > 0 && now.Sub(t.OpenedAt) >= rules.MaxHold {
		return Time
	}

	if !t.Expiry.IsZero() && !now.Before(t.Expiry) {
		return Expire
	}

	return None
}
