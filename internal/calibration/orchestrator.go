package calibration

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/quantora/compass/internal/contracts"
)

// BatchResult is the full calibrated dataset for one orchestrator run.
type BatchResult struct {
	Results map[contracts.GroupKey]*contracts.DayGroupResult
	// Dropped counts input signals excluded for missing sector or date_key.
	Dropped int
}

// SortedKeys returns the group keys in ascending (sector, date_key) order.
// The ordering is cosmetic; groups are numerically independent.
func (b *BatchResult) SortedKeys() []contracts.GroupKey {
	keys := make([]contracts.GroupKey, 0, len(b.Results))
	for k := range b.Results {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Orchestrator groups an unordered signal batch by (sector, date_key) and
// drives aggregate → calibrate → redistribute for every group.
type Orchestrator struct {
	aggregator *Aggregator
	calibrator *Calibrator
	log        zerolog.Logger
}

// NewOrchestrator creates a batch orchestrator.
func NewOrchestrator(aggregator *Aggregator, calibrator *Calibrator, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		aggregator: aggregator,
		calibrator: calibrator,
		log:        log.With().Str("component", "calibration.orchestrator").Logger(),
	}
}

// ProcessBatch calibrates every (sector, date_key) group in the batch.
// nextDayPct supplies realized next-day moves; keys without ground truth
// pass through uncalibrated. Signals missing sector or date_key are
// excluded from grouping and counted in the result.
func (o *Orchestrator) ProcessBatch(signals []contracts.Signal, nextDayPct map[contracts.GroupKey]float64) *BatchResult {
	groups := make(map[contracts.GroupKey][]contracts.Signal)
	dropped := 0
	for _, s := range signals {
		if !s.Groupable() {
			dropped++
			continue
		}
		key := contracts.GroupKey{Sector: s.Sector, DateKey: s.DateKey}
		groups[key] = append(groups[key], s)
	}
	if dropped > 0 {
		o.log.Warn().
			Int("dropped", dropped).
			Int("total", len(signals)).
			Msg("signals missing sector or date_key excluded from batch")
	}

	result := &BatchResult{
		Results: make(map[contracts.GroupKey]*contracts.DayGroupResult, len(groups)),
		Dropped: dropped,
	}
	for key, group := range groups {
		result.Results[key] = o.processGroup(key, group, nextDayPct)
	}

	o.log.Info().
		Int("groups", len(result.Results)).
		Int("signals", len(signals)-dropped).
		Msg("batch calibration completed")

	return result
}

// processGroup runs the three pipeline stages for one group, in order:
// each stage consumes the prior stage's output.
func (o *Orchestrator) processGroup(key contracts.GroupKey, group []contracts.Signal, nextDayPct map[contracts.GroupKey]float64) *contracts.DayGroupResult {
	rawScore, withWeights := o.aggregator.Aggregate(group)

	var basis *float64
	if pct, ok := nextDayPct[key]; ok {
		basis = contracts.Float64Ptr(pct)
	}
	calibratedScore, groupNote := o.calibrator.Calibrate(rawScore, basis)

	calibrated := Redistribute(withWeights, rawScore, calibratedScore)
	// Group-level note is a fallback for signals the redistribution left
	// unannotated; the per-signal note wins when both exist.
	for i := range calibrated {
		if calibrated[i].CalibrationNote.IsZero() {
			calibrated[i].CalibrationNote = groupNote
		}
	}

	return &contracts.DayGroupResult{
		Sector:             key.Sector,
		DateKey:            key.DateKey,
		DayScoreRaw:        roundTo(rawScore, 4),
		DayScoreCalibrated: roundTo(calibratedScore, 4),
		Signals:            calibrated,
		NextDayPct:         basis,
		CalibrationNote:    groupNote,
	}
}
