// Package decision turns a filtered set of calibrated signals into one
// directional call (UP / DOWN / NO_IMPACT) with consensus and confidence.
package decision

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/pkg/dateutil"
)

// Options configures the decision thresholds and the evidence weighting.
type Options struct {
	// UpThreshold / DownThreshold gate the weighted mean.
	UpThreshold   float64
	DownThreshold float64
	// MinConsensus is the minimum agreeing weight fraction; both the
	// threshold gate and the consensus gate must hold for a directional
	// label.
	MinConsensus float64

	// AsOf is the reference date key for recency weighting; empty means
	// the current UTC date.
	AsOf string
	// HalfLifeDays is the recency decay half-life.
	HalfLifeDays float64
	// UseSignalAge wires each signal's true age into the recency weight.
	// Off by default: the historical engine always evaluated the decay at
	// age zero, making recency a no-op, and downstream calibrations were
	// tuned against that behavior.
	UseSignalAge bool
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		UpThreshold:   0.8,
		DownThreshold: -0.8,
		MinConsensus:  0.6,
		HalfLifeDays:  dateutil.DefaultHalfLifeDays,
	}
}

const (
	rationaleDefault      = "Direction inferred from weighted mean and consensus of adjusted sentiment."
	rationaleInsufficient = "Insufficient evidence."
)

// Engine computes decisions. It never mutates its input signals, so
// concurrent calls over slices of the same dataset are safe.
type Engine struct {
	opts Options
	log  zerolog.Logger
}

// NewEngine creates a decision engine.
func NewEngine(opts Options, log zerolog.Logger) *Engine {
	return &Engine{
		opts: opts,
		log:  log.With().Str("component", "decision.engine").Logger(),
	}
}

// Decide aggregates the given signals into one decision. Every input,
// including an empty list or all-zero weights, resolves to a well-defined
// decision; this never errors.
func (e *Engine) Decide(signals []contracts.Signal) contracts.Decision {
	weights := make([]float64, len(signals))
	totalWeight := 0.0
	weightedSum := 0.0
	for i, s := range signals {
		w := s.Confidence * e.recencyWeight(&s)
		weights[i] = w
		totalWeight += w
		weightedSum += w * s.EffectiveSentiment()
	}

	if totalWeight == 0 {
		// Deliberately low-confidence fallback, not an error.
		return contracts.Decision{
			Label:        contracts.LabelNoImpact,
			WeightedMean: 0.0,
			Consensus:    0.0,
			Confidence:   0.2,
			Rationale:    rationaleInsufficient,
			TopSignals:   []string{},
		}
	}

	weightedMean := weightedSum / totalWeight

	// Consensus counts weight agreeing with the sign of the weighted mean;
	// a zero mean forces consensus to zero regardless of individual signs.
	agreeing := 0.0
	for i, s := range signals {
		eff := s.EffectiveSentiment()
		if (weightedMean > 0 && eff > 0) || (weightedMean < 0 && eff < 0) {
			agreeing += weights[i]
		}
	}
	consensus := 0.0
	if weightedMean != 0 {
		consensus = agreeing / totalWeight
	}

	label := contracts.LabelNoImpact
	switch {
	case weightedMean >= e.opts.UpThreshold && consensus >= e.opts.MinConsensus:
		label = contracts.LabelUp
	case weightedMean <= e.opts.DownThreshold && consensus >= e.opts.MinConsensus:
		label = contracts.LabelDown
	}

	// Saturating evidence-mass indicator, not a probability.
	confidence := math.Min(0.9, totalWeight/(totalWeight+1.0))

	decision := contracts.Decision{
		Label:        label,
		WeightedMean: roundTo(weightedMean, 3),
		Consensus:    roundTo(consensus, 3),
		Confidence:   roundTo(confidence, 3),
		Rationale:    rationaleDefault,
		TopSignals:   topSignals(signals, 3),
	}

	e.log.Debug().
		Str("label", string(decision.Label)).
		Float64("weighted_mean", decision.WeightedMean).
		Float64("consensus", decision.Consensus).
		Int("signals", len(signals)).
		Msg("decision computed")

	return decision
}

func (e *Engine) recencyWeight(s *contracts.Signal) float64 {
	if !e.opts.UseSignalAge {
		return 1.0
	}
	return dateutil.RecencyWeight(s.DateKey, e.opts.AsOf, e.opts.HalfLifeDays)
}

// topSignals returns the ids of up to n signals with the largest absolute
// effective sentiment, stable by input order on ties.
func topSignals(signals []contracts.Signal, n int) []string {
	ranked := make([]contracts.Signal, len(signals))
	copy(ranked, signals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].EffectiveSentiment()) > math.Abs(ranked[j].EffectiveSentiment())
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.ID
	}
	return ids
}

func roundTo(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
