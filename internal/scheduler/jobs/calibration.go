package jobs

import (
	"context"
	"time"

	"github.com/quantora/compass/internal/calibration"
	"github.com/quantora/compass/pkg/logger"
)

// CalibrationJob runs the nightly calibration for the previous calendar
// day, once the classifier batch and the day's realized moves are both
// available.
type CalibrationJob struct {
	service *calibration.Service
	logger  *logger.Logger
}

// NewCalibrationJob creates a new calibration job
func NewCalibrationJob(service *calibration.Service, log *logger.Logger) *CalibrationJob {
	return &CalibrationJob{
		service: service,
		logger:  log,
	}
}

// Name returns the job name
func (j *CalibrationJob) Name() string {
	return "nightly_calibration"
}

// Schedule returns the cron schedule (02:30 UTC daily)
func (j *CalibrationJob) Schedule() string {
	return "0 30 2 * * *"
}

// Run executes the calibration for yesterday
func (j *CalibrationJob) Run(ctx context.Context) error {
	dateKey := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	j.logger.WithField("date_key", dateKey).Info("Starting nightly calibration")

	summary, err := j.service.RunDay(ctx, dateKey)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"date_key":   summary.DateKey,
		"signals":    summary.Signals,
		"groups":     summary.Groups,
		"calibrated": summary.Calibrated,
	}).Info("Nightly calibration completed")

	return nil
}
