package contracts

// Signal represents one classified sentiment observation for a sector/ticker
// set on one calendar day, as produced by the external classifier.
// SSOT: classifier output schema is defined here only.
type Signal struct {
	ID      string   `json:"news_id"`
	Sector  string   `json:"sector"`
	Tickers []string `json:"tickers"`

	// Sentiment score in [-4.0, +4.0]. Caller-supplied, not clamped.
	SentimentScore float64 `json:"sentiment_score"`
	// Classifier confidence in [0.0, 1.0].
	Confidence float64 `json:"confidence"`

	ImpactHorizon   string   `json:"impact_horizon,omitempty"`
	NewsType        string   `json:"news_type"`
	Rationale       string   `json:"rationale,omitempty"`
	EvidencePhrases []string `json:"evidence_phrases,omitempty"`

	// DateKey is derived once from the source timestamp (YYYY-MM-DD) and
	// never recomputed.
	DateKey string `json:"date_key,omitempty"`

	// Derived fields, absent until calibration has run.
	AttributionWeight *float64        `json:"attribution_weight,omitempty"`
	AdjustedSentiment *float64        `json:"adjusted_sentiment,omitempty"`
	CalibrationNote   CalibrationNote `json:"calibration_note,omitzero"`
}

// EffectiveSentiment returns the calibrated sentiment when present,
// otherwise the raw score.
func (s *Signal) EffectiveSentiment() float64 {
	if s.AdjustedSentiment != nil {
		return *s.AdjustedSentiment
	}
	return s.SentimentScore
}

// Groupable reports whether the signal carries the fields required for
// (sector, date_key) grouping.
func (s *Signal) Groupable() bool {
	return s.Sector != "" && s.DateKey != ""
}

// GroupKey identifies one (sector, date_key) aggregation group.
type GroupKey struct {
	Sector  string `json:"sector"`
	DateKey string `json:"date_key"`
}

// Less orders keys ascending by sector then date_key.
func (k GroupKey) Less(other GroupKey) bool {
	if k.Sector != other.Sector {
		return k.Sector < other.Sector
	}
	return k.DateKey < other.DateKey
}

func (k GroupKey) String() string {
	return k.Sector + "/" + k.DateKey
}

// DayGroupResult is the calibrated output for one (sector, date_key) group.
type DayGroupResult struct {
	Sector             string          `json:"sector"`
	DateKey            string          `json:"date_key"`
	DayScoreRaw        float64         `json:"day_score_raw"`
	DayScoreCalibrated float64         `json:"day_score_calibrated"`
	Signals            []Signal        `json:"records"`
	NextDayPct         *float64        `json:"calibration_basis_next_day_pct"`
	CalibrationNote    CalibrationNote `json:"calibration_note"`
}

// Key returns the group key for this result.
func (r *DayGroupResult) Key() GroupKey {
	return GroupKey{Sector: r.Sector, DateKey: r.DateKey}
}

// Float64Ptr returns a pointer to v. Convenience for optional fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
