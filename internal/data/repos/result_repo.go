package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quantora/compass/internal/contracts"
)

// ResultRepository implements contracts.ResultRepository.
// SSOT: calibrated day-group results are persisted here only.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new result repository
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// SaveResults upserts calibration output keyed by (sector, date_key).
// The member signals are stored as a JSONB snapshot alongside the scores
// so a result can be read back without joining the signals table.
func (r *ResultRepository) SaveResults(ctx context.Context, results []contracts.DayGroupResult) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO analytics.day_group_results (
			sector, date_key,
			day_score_raw, day_score_calibrated,
			next_day_pct, calibration_note, records
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sector, date_key) DO UPDATE SET
			day_score_raw = EXCLUDED.day_score_raw,
			day_score_calibrated = EXCLUDED.day_score_calibrated,
			next_day_pct = EXCLUDED.next_day_pct,
			calibration_note = EXCLUDED.calibration_note,
			records = EXCLUDED.records,
			updated_at = NOW()`

	for _, res := range results {
		records, err := json.Marshal(res.Signals)
		if err != nil {
			return fmt.Errorf("failed to marshal records for %s: %w", res.Key(), err)
		}

		batch.Queue(query,
			res.Sector, res.DateKey,
			res.DayScoreRaw, res.DayScoreCalibrated,
			res.NextDayPct, noteValue(res.CalibrationNote), records,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range results {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert result: %w", err)
		}
	}

	return nil
}

// GetByKey retrieves the calibrated result for one (sector, date_key) group.
// Returns (nil, nil) when no result exists.
func (r *ResultRepository) GetByKey(ctx context.Context, key contracts.GroupKey) (*contracts.DayGroupResult, error) {
	query := `
		SELECT
			sector, date_key,
			day_score_raw, day_score_calibrated,
			next_day_pct, calibration_note, records
		FROM analytics.day_group_results
		WHERE sector = $1 AND date_key = $2`

	res, err := scanResult(r.pool.QueryRow(ctx, query, key.Sector, key.DateKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result %s: %w", key, err)
	}

	return res, nil
}

// ListBySector retrieves results for a sector within an inclusive date
// range, oldest first. Empty bounds mean unbounded.
func (r *ResultRepository) ListBySector(ctx context.Context, sector, fromDate, toDate string) ([]contracts.DayGroupResult, error) {
	query := `
		SELECT
			sector, date_key,
			day_score_raw, day_score_calibrated,
			next_day_pct, calibration_note, records
		FROM analytics.day_group_results
		WHERE sector = $1
		  AND ($2 = '' OR date_key >= $2)
		  AND ($3 = '' OR date_key <= $3)
		ORDER BY date_key`

	rows, err := r.pool.Query(ctx, query, sector, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for %s: %w", sector, err)
	}
	defer rows.Close()

	var results []contracts.DayGroupResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		results = append(results, *res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}

	return results, nil
}

func scanResult(row pgx.Row) (*contracts.DayGroupResult, error) {
	var res contracts.DayGroupResult
	var note *string
	var records []byte

	err := row.Scan(
		&res.Sector, &res.DateKey,
		&res.DayScoreRaw, &res.DayScoreCalibrated,
		&res.NextDayPct, &note, &records,
	)
	if err != nil {
		return nil, err
	}

	if note != nil {
		res.CalibrationNote = contracts.ParseCalibrationNote(*note)
	}
	if len(records) > 0 {
		if err := json.Unmarshal(records, &res.Signals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal records: %w", err)
		}
	}

	return &res, nil
}
