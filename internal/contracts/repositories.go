package contracts

import "context"

// SSOT: repository and external-source interfaces are defined here only.

// SignalFilter narrows signal queries. Zero values mean "no constraint".
type SignalFilter struct {
	Sector   string
	Tickers  []string
	FromDate string // inclusive, YYYY-MM-DD
	ToDate   string // inclusive, YYYY-MM-DD
}

// SignalRepository persists classifier signals, including derived fields
// written back after calibration.
type SignalRepository interface {
	SaveBatch(ctx context.Context, signals []Signal) error
	List(ctx context.Context, filter SignalFilter) ([]Signal, error)
	GetGroup(ctx context.Context, key GroupKey) ([]Signal, error)
}

// ResultRepository persists per-group calibration output.
type ResultRepository interface {
	SaveResults(ctx context.Context, results []DayGroupResult) error
	GetByKey(ctx context.Context, key GroupKey) (*DayGroupResult, error)
	ListBySector(ctx context.Context, sector, fromDate, toDate string) ([]DayGroupResult, error)
}

// DecisionRepository records decision query outcomes for later audit.
type DecisionRepository interface {
	Save(ctx context.Context, query DecisionQuery, decision Decision) error
}

// SignalSource supplies classifier signal batches from an external service.
type SignalSource interface {
	FetchBatch(ctx context.Context, dateKey string) ([]Signal, error)
}

// MarketDataSource supplies realized next-day percentage moves keyed by
// (sector, date_key).
type MarketDataSource interface {
	NextDayChanges(ctx context.Context, dateKey string) (map[GroupKey]float64, error)
}
