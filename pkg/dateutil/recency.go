package dateutil

import (
	"math"
	"time"
)

// DefaultHalfLifeDays is the default half-life for recency decay.
const DefaultHalfLifeDays = 7.0

// RecencyWeight returns a time-decay weight for a signal dated dateKey,
// relative to asOf (also a date key; empty means the current UTC date):
//
//	weight = 0.5 ^ (age_days / halfLifeDays)
//
// Same-day or future-dated signals weigh 1.0. A malformed dateKey weighs
// 1.0 as well: a missing date must not zero out a signal's influence.
func RecencyWeight(dateKey, asOf string, halfLifeDays float64) float64 {
	d, err := time.Parse(DateKeyFormat, truncateKey(dateKey))
	if err != nil {
		return 1.0
	}

	var t time.Time
	if asOf == "" {
		t = time.Now().UTC().Truncate(24 * time.Hour)
	} else if parsed, err := time.Parse(DateKeyFormat, truncateKey(asOf)); err == nil {
		t = parsed
	} else {
		t = time.Now().UTC().Truncate(24 * time.Hour)
	}

	days := t.Sub(d).Hours() / 24
	if days <= 0 {
		return 1.0
	}
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	return math.Pow(0.5, days/halfLifeDays)
}

func truncateKey(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
