package dateutil

import (
	"math"
	"testing"
)

func TestToDateKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso timestamp", "2025-09-26T10:15:00Z", "2025-09-26"},
		{"iso with offset", "2025-09-26T10:15:00+09:00", "2025-09-26"},
		{"already a date key", "2025-09-26", "2025-09-26"},
		{"empty", "", ""},
		{"short garbage", "garbage", "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToDateKey(tt.in); got != tt.want {
				t.Errorf("ToDateKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecencyWeight(t *testing.T) {
	tests := []struct {
		name     string
		dateKey  string
		asOf     string
		halfLife float64
		want     float64
	}{
		{"one half-life", "2025-09-19", "2025-09-26", 7.0, 0.5},
		{"two half-lives", "2025-09-12", "2025-09-26", 7.0, 0.25},
		{"same day", "2025-09-26", "2025-09-26", 7.0, 1.0},
		{"future signal", "2025-09-30", "2025-09-26", 7.0, 1.0},
		{"malformed date key", "not-a-date", "2025-09-26", 7.0, 1.0},
		{"empty date key", "", "2025-09-26", 7.0, 1.0},
		{"timestamp tolerated", "2025-09-19T08:00:00Z", "2025-09-26", 7.0, 0.5},
		{"zero half-life falls back to default", "2025-09-19", "2025-09-26", 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecencyWeight(tt.dateKey, tt.asOf, tt.halfLife)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RecencyWeight(%q, %q, %v) = %v, want %v",
					tt.dateKey, tt.asOf, tt.halfLife, got, tt.want)
			}
		})
	}
}

func TestRecencyWeightCurrentDate(t *testing.T) {
	// Without an asOf reference the weight is still well defined and in (0, 1].
	w := RecencyWeight("2020-01-01", "", 7.0)
	if w <= 0 || w > 1 {
		t.Errorf("RecencyWeight with current date = %v, want in (0, 1]", w)
	}
}
