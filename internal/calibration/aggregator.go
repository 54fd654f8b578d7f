// Package calibration implements the day-level sentiment aggregation,
// ground-truth calibration, and redistribution pipeline. Every stage is a
// pure computation: inputs are copied, never mutated in place.
package calibration

import (
	"math"

	"github.com/quantora/compass/internal/contracts"
)

// TypeMultipliers maps a news_type label to its importance multiplier.
// Unknown labels resolve to 1.0.
type TypeMultipliers map[string]float64

// DefaultTypeMultipliers returns the standard news-type importance table.
func DefaultTypeMultipliers() TypeMultipliers {
	return TypeMultipliers{
		"regulatory":   1.2,
		"earnings":     1.1,
		"legal":        1.1,
		"geopolitical": 1.0,
		"company":      1.0,
		"supplychain":  1.0,
		"M&A":          1.0,
		"sector":       0.95,
		"macro":        0.9,
		"ESG":          0.9,
	}
}

// For returns the multiplier for a news type, 1.0 when unknown.
func (m TypeMultipliers) For(newsType string) float64 {
	if v, ok := m[newsType]; ok {
		return v
	}
	return 1.0
}

// weightEpsilon guards the normalization divide when every raw weight is
// exactly zero. In that degenerate case all normalized weights collapse to
// zero and the day score is zero.
const weightEpsilon = 1e-9

// Aggregator combines all signals of one (sector, date_key) group into a
// single day-level sentiment score. The multiplier table is explicit
// configuration so deployments can tune it.
type Aggregator struct {
	multipliers TypeMultipliers
}

// NewAggregator creates an aggregator with the given multiplier table.
// A nil table falls back to the defaults.
func NewAggregator(multipliers TypeMultipliers) *Aggregator {
	if multipliers == nil {
		multipliers = DefaultTypeMultipliers()
	}
	return &Aggregator{multipliers: multipliers}
}

// Aggregate computes the group's day score and a copy of the signals with
// attribution weights populated. An empty group yields (0, nil).
//
// Per-signal weight: confidence * magnitude * typeMultiplier, where
// magnitude = 0.5 + 0.5*min(1, |score|/4) clamps the sentiment contribution
// to [0.5, 1.0] so near-neutral signals still carry half weight from
// confidence and type alone.
func (a *Aggregator) Aggregate(signals []contracts.Signal) (float64, []contracts.Signal) {
	if len(signals) == 0 {
		return 0.0, nil
	}

	rawWeights := make([]float64, len(signals))
	total := 0.0
	for i, s := range signals {
		magnitude := 0.5 + 0.5*math.Min(1.0, math.Abs(s.SentimentScore)/4.0)
		rawWeights[i] = s.Confidence * magnitude * a.multipliers.For(s.NewsType)
		total += rawWeights[i]
	}
	if total == 0 {
		total = weightEpsilon
	}

	out := make([]contracts.Signal, len(signals))
	dayScore := 0.0
	for i, s := range signals {
		w := rawWeights[i] / total
		out[i] = s
		out[i].AttributionWeight = contracts.Float64Ptr(roundTo(w, 6))
		dayScore += w * s.SentimentScore
	}
	return dayScore, out
}

// roundTo rounds x to the given number of decimal places.
func roundTo(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
