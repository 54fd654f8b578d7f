package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// calibrateCmd represents the calibrate command
var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Run calibration for one calendar day",
	Long: `Runs the full calibration pipeline for one calendar day:
pull the classifier batch, pull realized next-day sector moves,
aggregate, calibrate, redistribute, and persist the results.

With --stored the classifier is not contacted; signals already in the
database are reprocessed instead. Use this when market data arrived
after the nightly run.

Example:
  go run ./cmd/compass calibrate
  go run ./cmd/compass calibrate --date 2025-05-14
  go run ./cmd/compass calibrate --date 2025-05-14 --stored`,
	RunE: runCalibrate,
}

var (
	calibrateDate   string
	calibrateStored bool
)

func init() {
	rootCmd.AddCommand(calibrateCmd)

	// Flags
	calibrateCmd.Flags().StringVar(&calibrateDate, "date", "", "date to calibrate, YYYY-MM-DD (default: yesterday UTC)")
	calibrateCmd.Flags().BoolVar(&calibrateStored, "stored", false, "reprocess stored signals instead of pulling a fresh batch")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Compass Calibration ===")

	if calibrateDate == "" {
		calibrateDate = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", calibrateDate); err != nil {
		return fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", calibrateDate)
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Printf("Date: %s\n", calibrateDate)
	if calibrateStored {
		fmt.Println("Source: stored signals")
	} else {
		fmt.Println("Source: classifier batch")
	}
	fmt.Println()

	run := d.calibration.RunDay
	if calibrateStored {
		run = d.calibration.RunStored
	}

	result, err := run(ctx, calibrateDate)
	if err != nil {
		return fmt.Errorf("calibration run failed: %w", err)
	}

	fmt.Println("Calibration completed:")
	fmt.Printf("  Signals:           %d\n", result.Signals)
	fmt.Printf("  Dropped:           %d\n", result.Dropped)
	fmt.Printf("  Groups:            %d\n", result.Groups)
	fmt.Printf("  Calibrated groups: %d\n", result.Calibrated)
	if len(result.Sectors) > 0 {
		fmt.Printf("  Sectors:           %s\n", strings.Join(result.Sectors, ", "))
	}

	return nil
}
