package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantora/compass/internal/contracts"
)

// streamCmd represents the stream command
var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Subscribe to the live signal feed",
	Long: `Connects to the classifier's WebSocket feed and persists signals as
they arrive. The nightly calibration run picks them up from the
database; this command only ingests.

Example:
  go run ./cmd/compass stream --sectors it-technology,it-energy`,
	RunE: runStream,
}

var (
	streamSectors string
)

func init() {
	rootCmd.AddCommand(streamCmd)

	// Flags
	streamCmd.Flags().StringVar(&streamSectors, "sectors", "", "comma-separated sectors to subscribe to (required)")
	streamCmd.MarkFlagRequired("sectors")
}

func runStream(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Compass Signal Stream ===")

	sectors := strings.Split(streamSectors, ",")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	received := 0
	d.stream.OnSignal(func(s contracts.Signal) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := d.signalRepo.SaveBatch(ctx, []contracts.Signal{s}); err != nil {
			d.log.WithError(err).WithField("news_id", s.ID).Error("Failed to persist streamed signal")
			return
		}

		received++
		d.log.WithFields(map[string]interface{}{
			"news_id":  s.ID,
			"sector":   s.Sector,
			"date_key": s.DateKey,
		}).Debug("Streamed signal persisted")
	})
	d.stream.OnError(func(err error) {
		d.log.WithError(err).Warn("Stream error")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := d.stream.Connect(ctx); err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	if err := d.stream.Subscribe(sectors...); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	fmt.Printf("Subscribed to: %s\n", strings.Join(sectors, ", "))
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nDisconnecting...")
	if err := d.stream.Disconnect(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	fmt.Printf("Stream closed. Signals received: %d\n", received)
	return nil
}
