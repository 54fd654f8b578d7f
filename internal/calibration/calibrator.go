package calibration

import (
	"math"

	"github.com/quantora/compass/internal/contracts"
)

// Calibrator rescales a day score toward an externally observed next-day
// percentage move, subject to sign and magnitude gates.
type Calibrator struct {
	// MinMovePct is the smallest |next_day_pct| considered informative.
	MinMovePct float64
	// MinDenom floors |day_score| in the scale denominator.
	MinDenom float64
	// ScaleMin / ScaleMax bound the calibration factor.
	ScaleMin float64
	ScaleMax float64
}

// NewCalibrator returns a calibrator with the standard gates: moves under
// 0.3% are ignored and the scale is clamped to [0.5, 1.8].
func NewCalibrator() *Calibrator {
	return &Calibrator{
		MinMovePct: 0.3,
		MinDenom:   0.1,
		ScaleMin:   0.5,
		ScaleMax:   1.8,
	}
}

// Calibrate returns the calibrated day score and a provenance note.
// Policy, in order:
//  1. no ground truth, or zero day score: return the score unchanged;
//  2. direction mismatch, or a move too small to be informative: unchanged;
//  3. otherwise scale by clamp(|pct| / max(MinDenom, |day_score|),
//     ScaleMin, ScaleMax).
func (c *Calibrator) Calibrate(dayScore float64, nextDayPct *float64) (float64, contracts.CalibrationNote) {
	if nextDayPct == nil || dayScore == 0 || sign(dayScore) == 0 {
		return dayScore, contracts.CalibrationNote{Kind: contracts.NoteNoCalibrationDataOrZero}
	}
	if sign(dayScore) != sign(*nextDayPct) || math.Abs(*nextDayPct) < c.MinMovePct {
		return dayScore, contracts.CalibrationNote{Kind: contracts.NoteNoCalibrationMismatch}
	}

	scale := clamp(math.Abs(*nextDayPct)/math.Max(c.MinDenom, math.Abs(dayScore)), c.ScaleMin, c.ScaleMax)
	return dayScore * scale, contracts.CalibrationNote{Kind: contracts.NoteScaled, Factor: roundTo(scale, 3)}
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
