package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quantora/compass/internal/contracts"
)

// SignalRepository implements contracts.SignalRepository.
// SSOT: signal persistence happens here only.
type SignalRepository struct {
	pool *pgxpool.Pool
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(pool *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{pool: pool}
}

// SaveBatch upserts a batch of classifier signals, including any derived
// calibration fields already present on them.
func (r *SignalRepository) SaveBatch(ctx context.Context, signals []contracts.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO signals.classifier_signals (
			news_id, sector, tickers,
			sentiment_score, confidence,
			impact_horizon, news_type, rationale, evidence_phrases,
			date_key,
			attribution_weight, adjusted_sentiment, calibration_note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (news_id) DO UPDATE SET
			sector = EXCLUDED.sector,
			tickers = EXCLUDED.tickers,
			sentiment_score = EXCLUDED.sentiment_score,
			confidence = EXCLUDED.confidence,
			impact_horizon = EXCLUDED.impact_horizon,
			news_type = EXCLUDED.news_type,
			rationale = EXCLUDED.rationale,
			evidence_phrases = EXCLUDED.evidence_phrases,
			date_key = EXCLUDED.date_key,
			attribution_weight = EXCLUDED.attribution_weight,
			adjusted_sentiment = EXCLUDED.adjusted_sentiment,
			calibration_note = EXCLUDED.calibration_note,
			updated_at = NOW()`

	for _, s := range signals {
		batch.Queue(query,
			s.ID, s.Sector, s.Tickers,
			s.SentimentScore, s.Confidence,
			s.ImpactHorizon, s.NewsType, s.Rationale, s.EvidencePhrases,
			s.DateKey,
			s.AttributionWeight, s.AdjustedSentiment, noteValue(s.CalibrationNote),
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range signals {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert signal: %w", err)
		}
	}

	return nil
}

// List retrieves signals matching the filter, ordered by date_key then
// news_id for stable output.
func (r *SignalRepository) List(ctx context.Context, filter contracts.SignalFilter) ([]contracts.Signal, error) {
	query := `
		SELECT
			news_id, sector, tickers,
			sentiment_score, confidence,
			impact_horizon, news_type, rationale, evidence_phrases,
			date_key,
			attribution_weight, adjusted_sentiment, calibration_note
		FROM signals.classifier_signals
		WHERE ($1 = '' OR sector = $1)
		  AND ($2::text[] IS NULL OR tickers && $2)
		  AND ($3 = '' OR date_key >= $3)
		  AND ($4 = '' OR date_key <= $4)
		ORDER BY date_key, news_id`

	var tickers []string
	if len(filter.Tickers) > 0 {
		tickers = filter.Tickers
	}

	rows, err := r.pool.Query(ctx, query, filter.Sector, tickers, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetGroup retrieves all signals for one (sector, date_key) group.
func (r *SignalRepository) GetGroup(ctx context.Context, key contracts.GroupKey) ([]contracts.Signal, error) {
	query := `
		SELECT
			news_id, sector, tickers,
			sentiment_score, confidence,
			impact_horizon, news_type, rationale, evidence_phrases,
			date_key,
			attribution_weight, adjusted_sentiment, calibration_note
		FROM signals.classifier_signals
		WHERE sector = $1 AND date_key = $2
		ORDER BY news_id`

	rows, err := r.pool.Query(ctx, query, key.Sector, key.DateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal group %s: %w", key, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

func scanSignals(rows pgx.Rows) ([]contracts.Signal, error) {
	var signals []contracts.Signal

	for rows.Next() {
		var s contracts.Signal
		var note *string

		err := rows.Scan(
			&s.ID, &s.Sector, &s.Tickers,
			&s.SentimentScore, &s.Confidence,
			&s.ImpactHorizon, &s.NewsType, &s.Rationale, &s.EvidencePhrases,
			&s.DateKey,
			&s.AttributionWeight, &s.AdjustedSentiment, &note,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w", err)
		}

		if note != nil {
			s.CalibrationNote = contracts.ParseCalibrationNote(*note)
		}

		signals = append(signals, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w", err)
	}

	return signals, nil
}

// noteValue maps an empty note to NULL so unannotated signals stay clean
// in the database.
func noteValue(note contracts.CalibrationNote) *string {
	if note.IsZero() {
		return nil
	}
	s := note.String()
	return &s
}
