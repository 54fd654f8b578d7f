package jobs

import (
	"context"
	"time"

	"github.com/quantora/compass/internal/calibration"
	"github.com/quantora/compass/pkg/logger"
)

// ReprocessJob recalibrates recent days from stored signals. It catches
// groups whose realized moves arrived after their nightly run, e.g. after
// an exchange holiday.
type ReprocessJob struct {
	service *calibration.Service
	logger  *logger.Logger

	// lookbackDays is how many days behind yesterday to reprocess.
	lookbackDays int
}

// NewReprocessJob creates a new reprocess job
func NewReprocessJob(service *calibration.Service, log *logger.Logger) *ReprocessJob {
	return &ReprocessJob{
		service:      service,
		logger:       log,
		lookbackDays: 3,
	}
}

// Name returns the job name
func (j *ReprocessJob) Name() string {
	return "calibration_reprocess"
}

// Schedule returns the cron schedule (03:30 UTC daily)
func (j *ReprocessJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run recalibrates the lookback window from stored signals
func (j *ReprocessJob) Run(ctx context.Context) error {
	now := time.Now().UTC()

	for back := 2; back <= j.lookbackDays+1; back++ {
		dateKey := now.AddDate(0, 0, -back).Format("2006-01-02")

		summary, err := j.service.RunStored(ctx, dateKey)
		if err != nil {
			return err
		}
		if summary.Signals == 0 {
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"date_key":   dateKey,
			"groups":     summary.Groups,
			"calibrated": summary.Calibrated,
		}).Info("Reprocessed stored signals")
	}

	return nil
}
