package commands

import (
	"fmt"

	"github.com/quantora/compass/internal/calibration"
	"github.com/quantora/compass/internal/data/repos"
	"github.com/quantora/compass/internal/decision"
	"github.com/quantora/compass/internal/external/classifier"
	"github.com/quantora/compass/internal/external/marketdata"
	"github.com/quantora/compass/pkg/config"
	"github.com/quantora/compass/pkg/database"
	"github.com/quantora/compass/pkg/httputil"
	"github.com/quantora/compass/pkg/logger"
	"github.com/quantora/compass/pkg/redis"
)

// deps holds the fully wired application graph shared by all commands.
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client

	signalRepo   *repos.SignalRepository
	resultRepo   *repos.ResultRepository
	decisionRepo *repos.DecisionRepository

	classifier *classifier.Client
	stream     *classifier.StreamClient
	market     *marketdata.Client

	calibration *calibration.Service
	decisions   *decision.Service
}

// initDeps loads config and wires the full dependency graph.
func initDeps() (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (no-op when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "compass")

	// 5. Create HTTP client
	httpClient := httputil.New(cfg, log)

	// 6. Create external clients
	classifierClient := classifier.NewClient(cfg.Classifier, httpClient, log)
	streamClient := classifier.NewStreamClient(cfg.Classifier, log)
	marketClient := marketdata.NewClient(cfg.MarketData, httpClient, log)

	// 7. Create repositories
	signalRepo := repos.NewSignalRepository(db.Pool)
	resultRepo := repos.NewResultRepository(db.Pool)
	decisionRepo := repos.NewDecisionRepository(db.Pool)

	// 8. Create calibration pipeline
	orch := calibration.NewOrchestrator(
		calibration.NewAggregator(nil),
		calibration.NewCalibrator(),
		log.Zerolog(),
	)
	calibrationService := calibration.NewService(
		classifierClient, marketClient, signalRepo, resultRepo, orch, cache, log,
	)

	// 9. Create decision service
	opts := decision.Options{
		UpThreshold:   cfg.Engine.UpThreshold,
		DownThreshold: cfg.Engine.DownThreshold,
		MinConsensus:  cfg.Engine.MinConsensus,
		HalfLifeDays:  cfg.Engine.HalfLifeDays,
		UseSignalAge:  cfg.Engine.UseSignalAge,
	}
	decisionService := decision.NewService(signalRepo, decisionRepo, opts, cache, log)

	return &deps{
		cfg:          cfg,
		log:          log,
		db:           db,
		redis:        redisClient,
		signalRepo:   signalRepo,
		resultRepo:   resultRepo,
		decisionRepo: decisionRepo,
		classifier:   classifierClient,
		stream:       streamClient,
		market:       marketClient,
		calibration:  calibrationService,
		decisions:    decisionService,
	}, nil
}

// Close releases all connections.
func (d *deps) Close() {
	if d.redis != nil {
		d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
