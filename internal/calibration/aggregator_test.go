package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantora/compass/internal/contracts"
)

func TestAggregator_WorkedExample(t *testing.T) {
	agg := NewAggregator(nil)

	signals := []contracts.Signal{
		{ID: "N1", SentimentScore: 2.6, Confidence: 0.78, NewsType: "regulatory"},
		{ID: "N2", SentimentScore: -0.5, Confidence: 0.55, NewsType: "legal"},
	}

	dayScore, out := agg.Aggregate(signals)
	require.Len(t, out, 2)

	// raw weights: 0.78*0.825*1.2 = 0.7722, 0.55*0.5625*1.1 = 0.3403
	require.NotNil(t, out[0].AttributionWeight)
	require.NotNil(t, out[1].AttributionWeight)
	assert.InDelta(t, 0.6941, *out[0].AttributionWeight, 0.0001)
	assert.InDelta(t, 0.3059, *out[1].AttributionWeight, 0.0001)
	assert.InDelta(t, 1.652, dayScore, 0.001)

	// Input signals stay untouched.
	assert.Nil(t, signals[0].AttributionWeight)
}

func TestAggregator_WeightsSumToOne(t *testing.T) {
	agg := NewAggregator(nil)

	signals := []contracts.Signal{
		{ID: "a", SentimentScore: 3.9, Confidence: 0.9, NewsType: "earnings"},
		{ID: "b", SentimentScore: -2.2, Confidence: 0.4, NewsType: "macro"},
		{ID: "c", SentimentScore: 0.1, Confidence: 0.7, NewsType: "unknown-type"},
		{ID: "d", SentimentScore: 5.5, Confidence: 0.2, NewsType: "M&A"}, // out of domain, not clamped
	}

	_, out := agg.Aggregate(signals)

	sum := 0.0
	for _, s := range out {
		require.NotNil(t, s.AttributionWeight)
		sum += *s.AttributionWeight
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestAggregator_MagnitudeClamp(t *testing.T) {
	// magnitude = 0.5 + 0.5*min(1, |score|/4): exactly 1.0 at |score| >= 4,
	// exactly 0.5 at score == 0. Verified through the raw weight with
	// confidence 1.0 and a neutral type multiplier.
	agg := NewAggregator(TypeMultipliers{})

	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"saturated positive", 4.0, 1.0},
		{"beyond domain", 9.0, 1.0},
		{"saturated negative", -4.0, 1.0},
		{"zero sentiment", 0.0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A second signal pins the total so the weight ratio exposes the
			// magnitude: w1/(w1+w2) with w2 = 1.0.
			signals := []contracts.Signal{
				{ID: "probe", SentimentScore: tt.score, Confidence: 1.0},
				{ID: "ref", SentimentScore: 4.0, Confidence: 1.0},
			}
			_, out := agg.Aggregate(signals)
			got := *out[0].AttributionWeight / *out[1].AttributionWeight
			assert.InDelta(t, tt.want, got, 1e-4)
		})
	}
}

func TestAggregator_EmptyGroup(t *testing.T) {
	agg := NewAggregator(nil)
	dayScore, out := agg.Aggregate(nil)
	assert.Equal(t, 0.0, dayScore)
	assert.Empty(t, out)
}

func TestAggregator_AllZeroWeights(t *testing.T) {
	agg := NewAggregator(nil)

	// Zero confidence everywhere: the epsilon floor keeps the division
	// defined and every weight and the day score collapse to zero.
	signals := []contracts.Signal{
		{ID: "a", SentimentScore: 3.0, Confidence: 0},
		{ID: "b", SentimentScore: -1.0, Confidence: 0},
	}
	dayScore, out := agg.Aggregate(signals)

	assert.Equal(t, 0.0, dayScore)
	for _, s := range out {
		require.NotNil(t, s.AttributionWeight)
		assert.Equal(t, 0.0, *s.AttributionWeight)
	}
}

func TestTypeMultipliers_For(t *testing.T) {
	m := DefaultTypeMultipliers()
	assert.Equal(t, 1.2, m.For("regulatory"))
	assert.Equal(t, 0.9, m.For("ESG"))
	assert.Equal(t, 1.0, m.For("never-seen-before"))

	override := TypeMultipliers{"regulatory": 2.0}
	assert.Equal(t, 2.0, override.For("regulatory"))
	assert.Equal(t, 1.0, override.For("earnings"))
}

func TestRoundTo(t *testing.T) {
	if got := roundTo(0.69410529, 6); math.Abs(got-0.694105) > 1e-12 {
		t.Errorf("roundTo(0.69410529, 6) = %v", got)
	}
	if got := roundTo(1.21085, 3); math.Abs(got-1.211) > 1e-12 {
		t.Errorf("roundTo(1.21085, 3) = %v", got)
	}
}
