package decision

import (
	"context"
	"fmt"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/pkg/logger"
	"github.com/quantora/compass/pkg/redis"
)

// Service answers decision queries against stored calibrated signals and
// records every answer to the decision log.
type Service struct {
	signalRepo   contracts.SignalRepository
	decisionRepo contracts.DecisionRepository
	opts         Options
	cache        *redis.Cache // nil when redis is disabled
	logger       *logger.Logger
}

// NewService creates a decision service.
func NewService(
	signalRepo contracts.SignalRepository,
	decisionRepo contracts.DecisionRepository,
	opts Options,
	cache *redis.Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		signalRepo:   signalRepo,
		decisionRepo: decisionRepo,
		opts:         opts,
		cache:        cache,
		logger:       log,
	}
}

// Query resolves one decision query: load the matching signals, run the
// engine over them, persist the outcome, and echo the query targeting in
// the response.
func (s *Service) Query(ctx context.Context, query contracts.DecisionQuery) (*contracts.DecisionResponse, error) {
	if query.Level != contracts.TargetSector && query.Level != contracts.TargetTicker {
		return nil, fmt.Errorf("invalid target level %q", query.Level)
	}
	if query.Name == "" {
		return nil, fmt.Errorf("target name is required")
	}

	cacheKey := redis.DecisionKey(string(query.Level), query.Name, query.FromDate, query.ToDate)
	if s.cache != nil && query.AsOf == "" {
		var cached contracts.DecisionResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	signals, err := s.signalRepo.List(ctx, queryFilter(query))
	if err != nil {
		return nil, fmt.Errorf("load signals for %s %q: %w", query.Level, query.Name, err)
	}

	matched := Select(signals, query)

	opts := s.opts
	opts.AsOf = query.AsOf
	engine := NewEngine(opts, s.logger.Zerolog())

	decision := engine.Decide(matched)

	if err := s.decisionRepo.Save(ctx, query, decision); err != nil {
		// The decision itself is still valid; log and return it.
		s.logger.WithError(err).Warn("Failed to record decision")
	}

	resp := &contracts.DecisionResponse{
		Level:    query.Level,
		Name:     query.Name,
		Tickers:  query.Tickers,
		Decision: decision,
	}

	if s.cache != nil && query.AsOf == "" {
		if err := s.cache.Set(ctx, cacheKey, resp, redis.TTLShort); err != nil {
			s.logger.WithError(err).Warn("Failed to cache decision")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"level":   query.Level,
		"name":    query.Name,
		"label":   decision.Label,
		"signals": len(matched),
	}).Info("Decision query resolved")

	return resp, nil
}

// queryFilter maps a decision query onto the repository filter. The
// ticker-level name fallback is handled by Select, so the repository
// filter stays coarse and the selector is authoritative.
func queryFilter(query contracts.DecisionQuery) contracts.SignalFilter {
	filter := contracts.SignalFilter{
		FromDate: query.FromDate,
		ToDate:   query.ToDate,
	}
	if query.Level == contracts.TargetSector {
		filter.Sector = query.Name
	}
	return filter
}
