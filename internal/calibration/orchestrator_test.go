package calibration

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantora/compass/internal/contracts"
)

func newTestOrchestrator() *Orchestrator {
	return NewOrchestrator(NewAggregator(nil), NewCalibrator(), zerolog.Nop())
}

func TestOrchestrator_ProcessBatch(t *testing.T) {
	orch := newTestOrchestrator()

	signals := []contracts.Signal{
		{ID: "N1", Sector: "Telecom", DateKey: "2025-09-26", SentimentScore: 2.6, Confidence: 0.78, NewsType: "regulatory"},
		{ID: "N2", Sector: "Telecom", DateKey: "2025-09-26", SentimentScore: -0.5, Confidence: 0.55, NewsType: "legal"},
		{ID: "N3", Sector: "Energy", DateKey: "2025-09-25", SentimentScore: -1.8, Confidence: 0.6, NewsType: "macro"},
		{ID: "N4", Sector: "", DateKey: "2025-09-26", SentimentScore: 1.0, Confidence: 0.9, NewsType: "company"},
		{ID: "N5", Sector: "Energy", DateKey: "", SentimentScore: 1.0, Confidence: 0.9, NewsType: "company"},
	}
	nextDay := map[contracts.GroupKey]float64{
		{Sector: "Telecom", DateKey: "2025-09-26"}: 2.0,
	}

	batch := orch.ProcessBatch(signals, nextDay)

	assert.Equal(t, 2, batch.Dropped)
	require.Len(t, batch.Results, 2)

	telecom := batch.Results[contracts.GroupKey{Sector: "Telecom", DateKey: "2025-09-26"}]
	require.NotNil(t, telecom)
	assert.InDelta(t, 1.6517, telecom.DayScoreRaw, 0.001)
	assert.InDelta(t, 2.0, telecom.DayScoreCalibrated, 0.001)
	require.NotNil(t, telecom.NextDayPct)
	assert.Equal(t, 2.0, *telecom.NextDayPct)
	assert.Equal(t, contracts.NoteScaled, telecom.CalibrationNote.Kind)

	for _, s := range telecom.Signals {
		require.NotNil(t, s.AttributionWeight)
		require.NotNil(t, s.AdjustedSentiment)
		// Per-signal note from redistribution wins over the group note.
		assert.Equal(t, contracts.NoteRedistributed, s.CalibrationNote.Kind)
	}

	// No ground truth for Energy: passes through uncalibrated.
	energy := batch.Results[contracts.GroupKey{Sector: "Energy", DateKey: "2025-09-25"}]
	require.NotNil(t, energy)
	assert.Nil(t, energy.NextDayPct)
	assert.Equal(t, contracts.NoteNoCalibrationDataOrZero, energy.CalibrationNote.Kind)
	assert.Equal(t, energy.DayScoreRaw, energy.DayScoreCalibrated)
}

func TestOrchestrator_SortedKeys(t *testing.T) {
	orch := newTestOrchestrator()

	signals := []contracts.Signal{
		{ID: "1", Sector: "B", DateKey: "2025-01-02", Confidence: 0.5},
		{ID: "2", Sector: "A", DateKey: "2025-01-03", Confidence: 0.5},
		{ID: "3", Sector: "A", DateKey: "2025-01-01", Confidence: 0.5},
	}

	batch := orch.ProcessBatch(signals, nil)
	keys := batch.SortedKeys()

	require.Len(t, keys, 3)
	assert.Equal(t, contracts.GroupKey{Sector: "A", DateKey: "2025-01-01"}, keys[0])
	assert.Equal(t, contracts.GroupKey{Sector: "A", DateKey: "2025-01-03"}, keys[1])
	assert.Equal(t, contracts.GroupKey{Sector: "B", DateKey: "2025-01-02"}, keys[2])
}

func TestOrchestrator_EmptyBatch(t *testing.T) {
	orch := newTestOrchestrator()
	batch := orch.ProcessBatch(nil, nil)
	assert.Empty(t, batch.Results)
	assert.Zero(t, batch.Dropped)
}

func TestOrchestrator_ZeroDayScoreGroup(t *testing.T) {
	orch := newTestOrchestrator()

	// Opposing signals engineered to a zero day score would be rare; zero
	// confidence everywhere is the reliable degenerate case.
	signals := []contracts.Signal{
		{ID: "a", Sector: "Tech", DateKey: "2025-02-01", SentimentScore: 3.0, Confidence: 0},
		{ID: "b", Sector: "Tech", DateKey: "2025-02-01", SentimentScore: -2.0, Confidence: 0},
	}

	batch := orch.ProcessBatch(signals, map[contracts.GroupKey]float64{
		{Sector: "Tech", DateKey: "2025-02-01"}: 1.5,
	})

	result := batch.Results[contracts.GroupKey{Sector: "Tech", DateKey: "2025-02-01"}]
	require.NotNil(t, result)
	assert.Equal(t, 0.0, result.DayScoreRaw)
	assert.Equal(t, 0.0, result.DayScoreCalibrated)
	assert.Equal(t, contracts.NoteNoCalibrationDataOrZero, result.CalibrationNote.Kind)
	for _, s := range result.Signals {
		assert.Equal(t, s.SentimentScore, *s.AdjustedSentiment)
		assert.Equal(t, contracts.NoteNoRedistribution, s.CalibrationNote.Kind)
	}
}
