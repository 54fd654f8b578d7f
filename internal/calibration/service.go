package calibration

import (
	"context"
	"fmt"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/pkg/logger"
	"github.com/quantora/compass/pkg/redis"
)

// RunSummary reports one calibration run.
type RunSummary struct {
	DateKey    string   `json:"date_key"`
	Signals    int      `json:"signals"`
	Dropped    int      `json:"dropped"`
	Groups     int      `json:"groups"`
	Calibrated int      `json:"calibrated_groups"`
	Sectors    []string `json:"sectors"`
}

// Service runs the full calibration pipeline for a calendar day: pull the
// classifier batch, pull realized moves, calibrate, persist, refresh cache.
// SSOT: pipeline wiring lives here only; API handlers and scheduled jobs
// both call into this service.
type Service struct {
	source     contracts.SignalSource
	market     contracts.MarketDataSource
	signalRepo contracts.SignalRepository
	resultRepo contracts.ResultRepository
	orch       *Orchestrator
	cache      *redis.Cache // nil when redis is disabled
	logger     *logger.Logger
}

// NewService creates a calibration service.
func NewService(
	source contracts.SignalSource,
	market contracts.MarketDataSource,
	signalRepo contracts.SignalRepository,
	resultRepo contracts.ResultRepository,
	orch *Orchestrator,
	cache *redis.Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		source:     source,
		market:     market,
		signalRepo: signalRepo,
		resultRepo: resultRepo,
		orch:       orch,
		cache:      cache,
		logger:     log,
	}
}

// RunDay calibrates all signals the classifier produced for dateKey.
// A market data failure is not fatal: groups without realized moves pass
// through uncalibrated, per policy.
func (s *Service) RunDay(ctx context.Context, dateKey string) (*RunSummary, error) {
	signals, err := s.source.FetchBatch(ctx, dateKey)
	if err != nil {
		return nil, fmt.Errorf("fetch signal batch for %s: %w", dateKey, err)
	}
	if len(signals) == 0 {
		s.logger.WithField("date_key", dateKey).Info("No signals to calibrate")
		return &RunSummary{DateKey: dateKey, Sectors: []string{}}, nil
	}

	moves, err := s.market.NextDayChanges(ctx, dateKey)
	if err != nil {
		s.logger.WithError(err).WithField("date_key", dateKey).
			Warn("Next-day moves unavailable, groups will pass through uncalibrated")
		moves = nil
	}

	batch := s.orch.ProcessBatch(signals, moves)

	if err := s.persist(ctx, batch); err != nil {
		return nil, err
	}
	s.refreshCache(ctx, batch)

	summary := summarize(dateKey, len(signals), batch)
	s.logger.WithFields(map[string]interface{}{
		"date_key":   dateKey,
		"signals":    summary.Signals,
		"groups":     summary.Groups,
		"calibrated": summary.Calibrated,
		"dropped":    summary.Dropped,
	}).Info("Calibration run completed")

	return summary, nil
}

// RunStored recalibrates signals already persisted for a date, without
// contacting the classifier. Used to reprocess after market data arrives
// late.
func (s *Service) RunStored(ctx context.Context, dateKey string) (*RunSummary, error) {
	signals, err := s.signalRepo.List(ctx, contracts.SignalFilter{FromDate: dateKey, ToDate: dateKey})
	if err != nil {
		return nil, fmt.Errorf("load stored signals for %s: %w", dateKey, err)
	}
	if len(signals) == 0 {
		return &RunSummary{DateKey: dateKey, Sectors: []string{}}, nil
	}

	// Stored signals may carry derived fields from the previous run;
	// clear them so the pipeline starts from raw scores.
	for i := range signals {
		signals[i].AttributionWeight = nil
		signals[i].AdjustedSentiment = nil
		signals[i].CalibrationNote = contracts.CalibrationNote{}
	}

	moves, err := s.market.NextDayChanges(ctx, dateKey)
	if err != nil {
		s.logger.WithError(err).WithField("date_key", dateKey).
			Warn("Next-day moves unavailable, groups will pass through uncalibrated")
		moves = nil
	}

	batch := s.orch.ProcessBatch(signals, moves)

	if err := s.persist(ctx, batch); err != nil {
		return nil, err
	}
	s.refreshCache(ctx, batch)

	return summarize(dateKey, len(signals), batch), nil
}

func (s *Service) persist(ctx context.Context, batch *BatchResult) error {
	var allSignals []contracts.Signal
	results := make([]contracts.DayGroupResult, 0, len(batch.Results))

	for _, key := range batch.SortedKeys() {
		res := batch.Results[key]
		results = append(results, *res)
		allSignals = append(allSignals, res.Signals...)
	}

	if err := s.signalRepo.SaveBatch(ctx, allSignals); err != nil {
		return fmt.Errorf("persist signals: %w", err)
	}
	if err := s.resultRepo.SaveResults(ctx, results); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}

	return nil
}

// refreshCache writes fresh group results through to redis. Cache failures
// are logged and ignored; the database remains the source of truth.
func (s *Service) refreshCache(ctx context.Context, batch *BatchResult) {
	if s.cache == nil {
		return
	}

	for key, res := range batch.Results {
		cacheKey := redis.DayGroupKey(key.Sector, key.DateKey)
		if err := s.cache.Set(ctx, cacheKey, res, redis.TTLLong); err != nil {
			s.logger.WithError(err).WithField("key", cacheKey).Warn("Failed to refresh group cache")
		}
	}
}

func summarize(dateKey string, signals int, batch *BatchResult) *RunSummary {
	summary := &RunSummary{
		DateKey: dateKey,
		Signals: signals,
		Dropped: batch.Dropped,
		Groups:  len(batch.Results),
		Sectors: []string{},
	}

	seen := make(map[string]bool)
	for _, key := range batch.SortedKeys() {
		if !seen[key.Sector] {
			seen[key.Sector] = true
			summary.Sectors = append(summary.Sectors, key.Sector)
		}
		if batch.Results[key].CalibrationNote.Kind == contracts.NoteScaled {
			summary.Calibrated++
		}
	}

	return summary
}
