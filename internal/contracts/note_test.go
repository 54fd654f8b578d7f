package contracts

import (
	"encoding/json"
	"testing"
)

func TestCalibrationNote_String(t *testing.T) {
	tests := []struct {
		name string
		note CalibrationNote
		want string
	}{
		{"unset", CalibrationNote{}, ""},
		{"no data", CalibrationNote{Kind: NoteNoCalibrationDataOrZero}, "no_calibration_data_or_zero"},
		{"mismatch", CalibrationNote{Kind: NoteNoCalibrationMismatch}, "no_calibration_mismatch_or_tiny_move"},
		{"no redistribution", CalibrationNote{Kind: NoteNoRedistribution}, "no_redistribution_zero_day_score"},
		{"scaled", CalibrationNote{Kind: NoteScaled, Factor: 1.211}, "scaled_by_1.211"},
		{"scaled whole number keeps decimal", CalibrationNote{Kind: NoteScaled, Factor: 1.0}, "scaled_by_1.0"},
		{"redistributed", CalibrationNote{Kind: NoteRedistributed, Factor: 0.333}, "redistributed_scale_0.333"},
		{"factor rounded to 3 decimals", CalibrationNote{Kind: NoteScaled, Factor: 1.21085}, "scaled_by_1.211"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.note.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalibrationNote_JSONRoundTrip(t *testing.T) {
	original := CalibrationNote{Kind: NoteRedistributed, Factor: 1.211}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"redistributed_scale_1.211"` {
		t.Errorf("marshal = %s", data)
	}

	var parsed CalibrationNote
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed.Kind != NoteRedistributed || parsed.Factor != 1.211 {
		t.Errorf("round trip = %+v, want %+v", parsed, original)
	}
}

func TestParseCalibrationNote(t *testing.T) {
	n := ParseCalibrationNote("scaled_by_1.8")
	if n.Kind != NoteScaled || n.Factor != 1.8 {
		t.Errorf("ParseCalibrationNote(scaled_by_1.8) = %+v", n)
	}

	if n := ParseCalibrationNote("something_else"); !n.IsZero() {
		t.Errorf("unknown note should parse to zero value, got %+v", n)
	}
}
