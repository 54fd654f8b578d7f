package calibration

import "github.com/quantora/compass/internal/contracts"

// Redistribute propagates a group's calibration factor back onto each
// signal, returning copies with adjusted_sentiment and a per-signal note
// set. When the raw day score is zero there is no meaningful reference to
// scale against, so each signal keeps its own sentiment unchanged.
func Redistribute(signals []contracts.Signal, rawScore, calibratedScore float64) []contracts.Signal {
	out := make([]contracts.Signal, len(signals))

	if rawScore == 0 {
		for i, s := range signals {
			out[i] = s
			out[i].AdjustedSentiment = contracts.Float64Ptr(s.SentimentScore)
			out[i].CalibrationNote = contracts.CalibrationNote{Kind: contracts.NoteNoRedistribution}
		}
		return out
	}

	scale := calibratedScore / rawScore
	note := contracts.CalibrationNote{Kind: contracts.NoteRedistributed, Factor: roundTo(scale, 3)}
	for i, s := range signals {
		out[i] = s
		out[i].AdjustedSentiment = contracts.Float64Ptr(roundTo(s.SentimentScore*scale, 4))
		out[i].CalibrationNote = note
	}
	return out
}
