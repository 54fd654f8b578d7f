package contracts

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NoteKind identifies how (or why not) a score was calibrated.
type NoteKind string

const (
	// NoteNone means no calibration step has touched the value yet.
	NoteNone NoteKind = ""
	// NoteNoCalibrationDataOrZero: ground truth absent or day score zero.
	NoteNoCalibrationDataOrZero NoteKind = "no_calibration_data_or_zero"
	// NoteNoCalibrationMismatch: direction mismatch or move below the
	// informative threshold.
	NoteNoCalibrationMismatch NoteKind = "no_calibration_mismatch_or_tiny_move"
	// NoteScaled: day score was rescaled toward the realized move.
	NoteScaled NoteKind = "scaled"
	// NoteRedistributed: a signal's sentiment was rescaled by the group's
	// calibration factor.
	NoteRedistributed NoteKind = "redistributed"
	// NoteNoRedistribution: group day score was zero, so per-signal scaling
	// was skipped.
	NoteNoRedistribution NoteKind = "no_redistribution_zero_day_score"
)

// CalibrationNote is a tagged provenance marker for calibration output.
// Callers branch on Kind; the string form matches the historical free-text
// notes so persisted output stays stable.
type CalibrationNote struct {
	Kind   NoteKind
	Factor float64 // populated for NoteScaled and NoteRedistributed
}

// IsZero reports whether no note has been set.
func (n CalibrationNote) IsZero() bool {
	return n.Kind == NoteNone
}

// String renders the note in its historical wire form, e.g.
// "scaled_by_1.211" or "no_calibration_data_or_zero".
func (n CalibrationNote) String() string {
	switch n.Kind {
	case NoteScaled:
		return "scaled_by_" + formatFactor(n.Factor)
	case NoteRedistributed:
		return "redistributed_scale_" + formatFactor(n.Factor)
	default:
		return string(n.Kind)
	}
}

// MarshalJSON encodes the note as its wire string.
func (n CalibrationNote) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// UnmarshalJSON parses the wire string back into a tagged note.
func (n *CalibrationNote) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = ParseCalibrationNote(s)
	return nil
}

// ParseCalibrationNote converts a wire string into a CalibrationNote.
// Unrecognized strings map to NoteNone with no factor.
func ParseCalibrationNote(s string) CalibrationNote {
	switch {
	case s == string(NoteNoCalibrationDataOrZero):
		return CalibrationNote{Kind: NoteNoCalibrationDataOrZero}
	case s == string(NoteNoCalibrationMismatch):
		return CalibrationNote{Kind: NoteNoCalibrationMismatch}
	case s == string(NoteNoRedistribution):
		return CalibrationNote{Kind: NoteNoRedistribution}
	case strings.HasPrefix(s, "scaled_by_"):
		f, _ := strconv.ParseFloat(strings.TrimPrefix(s, "scaled_by_"), 64)
		return CalibrationNote{Kind: NoteScaled, Factor: f}
	case strings.HasPrefix(s, "redistributed_scale_"):
		f, _ := strconv.ParseFloat(strings.TrimPrefix(s, "redistributed_scale_"), 64)
		return CalibrationNote{Kind: NoteRedistributed, Factor: f}
	default:
		return CalibrationNote{}
	}
}

// formatFactor renders a scale factor rounded to 3 decimals, always with a
// decimal point ("1.0", not "1"), matching the historical note format.
func formatFactor(f float64) string {
	rounded := math.Round(f*1000) / 1000
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
