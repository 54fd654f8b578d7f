package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantora/compass/internal/api"
	"github.com/quantora/compass/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- Starts the HTTP API server
- Serves stored signals and calibrated results
- Accepts calibration run triggers and decision queries

Endpoints:
  GET  /health                                  - Health check
  GET  /api/signals                             - List stored signals
  GET  /api/signals/{sector}/{date}             - One signal group
  POST /api/calibration/run                     - Trigger a calibration run
  GET  /api/calibration/results                 - Results for a sector
  GET  /api/calibration/results/{sector}/{date} - One group result
  POST /api/decision/query                      - Directional decision query

Example:
  go run ./cmd/compass api
  go run ./cmd/compass api --port 8087`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Compass API Server ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	// Override port if flag is set
	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	d.log.WithFields(map[string]interface{}{
		"port": d.cfg.Port,
		"env":  d.cfg.Env,
	}).Info("Initializing API server")

	// Create handlers
	signalHandler := handlers.NewSignalHandler(d.signalRepo, d.log)
	calibrationHandler := handlers.NewCalibrationHandler(d.calibration, d.resultRepo, d.log)
	decisionHandler := handlers.NewDecisionHandler(d.decisions, d.log)

	// Create router and server
	router := api.NewRouter(signalHandler, calibrationHandler, decisionHandler, d.log)
	server := api.New(d.cfg, d.log, router)

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	d.log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
