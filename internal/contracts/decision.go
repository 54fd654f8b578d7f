package contracts

// DecisionLabel is the directional call for a decision query.
type DecisionLabel string

const (
	LabelUp       DecisionLabel = "UP"
	LabelDown     DecisionLabel = "DOWN"
	LabelNoImpact DecisionLabel = "NO_IMPACT"
)

// Decision is the terminal, immutable output of one decision query.
type Decision struct {
	Label        DecisionLabel `json:"label"`
	WeightedMean float64       `json:"weighted_mean"`
	Consensus    float64       `json:"consensus"`
	Confidence   float64       `json:"confidence"`
	Rationale    string        `json:"rationale"`
	TopSignals   []string      `json:"top_signals"`
}

// TargetLevel selects whether a query targets a whole sector or a ticker.
type TargetLevel string

const (
	TargetSector TargetLevel = "sector"
	TargetTicker TargetLevel = "ticker"
)

// DecisionQuery describes the slice of calibrated signals a caller wants a
// directional call for. Filtering by these fields happens caller-side,
// before the engine runs.
type DecisionQuery struct {
	Level    TargetLevel `json:"level"`
	Name     string      `json:"name"`
	Tickers  []string    `json:"tickers,omitempty"`
	FromDate string      `json:"from_date,omitempty"` // inclusive, YYYY-MM-DD
	ToDate   string      `json:"to_date,omitempty"`   // inclusive, YYYY-MM-DD
	AsOf     string      `json:"as_of,omitempty"`     // ISO-8601 reference time
}

// DecisionResponse pairs a decision with an echo of the query targeting,
// so consumers can route results without holding the request.
type DecisionResponse struct {
	Level    TargetLevel `json:"level"`
	Name     string      `json:"name"`
	Tickers  []string    `json:"tickers,omitempty"`
	Decision Decision    `json:"decision"`
}
