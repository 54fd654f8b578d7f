// Package dateutil provides date-key derivation and recency weighting for
// sentiment signals. All functions are pure and fail open: malformed input
// degrades to a neutral result instead of an error.
package dateutil

import "strings"

// DateKeyFormat is the canonical calendar date key layout.
const DateKeyFormat = "2006-01-02"

// ToDateKey converts an ISO-8601 timestamp (e.g. "2025-09-26T10:15:00Z")
// into a calendar date key "YYYY-MM-DD". Inputs that already look like a
// date key pass through unchanged.
func ToDateKey(iso string) string {
	if iso == "" {
		return ""
	}
	// Fast path: already date-shaped.
	if len(iso) >= 10 && iso[4] == '-' && iso[7] == '-' {
		return iso[:10]
	}
	// Fallback: take everything before the time separator.
	key, _, _ := strings.Cut(iso, "T")
	return key
}
