package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantora/compass/internal/contracts"
)

func TestCalibrator_WorkedExample(t *testing.T) {
	cal := NewCalibrator()

	score, note := cal.Calibrate(1.652, contracts.Float64Ptr(2.0))

	assert.Equal(t, contracts.NoteScaled, note.Kind)
	assert.InDelta(t, 1.211, note.Factor, 0.001)
	assert.InDelta(t, 2.0, score, 0.001)
	assert.Equal(t, "scaled_by_1.211", note.String())
}

func TestCalibrator_Policy(t *testing.T) {
	cal := NewCalibrator()

	tests := []struct {
		name       string
		dayScore   float64
		nextDayPct *float64
		wantScore  float64
		wantKind   contracts.NoteKind
	}{
		{"no ground truth", 1.5, nil, 1.5, contracts.NoteNoCalibrationDataOrZero},
		{"zero day score", 0.0, contracts.Float64Ptr(1.0), 0.0, contracts.NoteNoCalibrationDataOrZero},
		{"direction mismatch", 1.5, contracts.Float64Ptr(-2.0), 1.5, contracts.NoteNoCalibrationMismatch},
		{"tiny move", 1.5, contracts.Float64Ptr(0.2), 1.5, contracts.NoteNoCalibrationMismatch},
		{"tiny negative move", -1.5, contracts.Float64Ptr(-0.29), -1.5, contracts.NoteNoCalibrationMismatch},
		{"negative pair scales", -1.0, contracts.Float64Ptr(-1.2), -1.2, contracts.NoteScaled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, note := cal.Calibrate(tt.dayScore, tt.nextDayPct)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantKind, note.Kind)
		})
	}
}

func TestCalibrator_ScaleBounds(t *testing.T) {
	cal := NewCalibrator()

	// Extreme realized move: scale clamps at 1.8.
	score, note := cal.Calibrate(0.5, contracts.Float64Ptr(4.0))
	assert.Equal(t, 1.8, note.Factor)
	assert.InDelta(t, 0.9, score, 1e-9)

	// Move far smaller than the modeled sentiment: scale clamps at 0.5.
	score, note = cal.Calibrate(3.0, contracts.Float64Ptr(0.3))
	assert.Equal(t, 0.5, note.Factor)
	assert.InDelta(t, 1.5, score, 1e-9)

	// The denominator floor kicks in for near-zero day scores.
	_, note = cal.Calibrate(0.01, contracts.Float64Ptr(0.5))
	assert.Equal(t, contracts.NoteScaled, note.Kind)
	assert.LessOrEqual(t, note.Factor, 1.8)
	assert.GreaterOrEqual(t, note.Factor, 0.5)
}
