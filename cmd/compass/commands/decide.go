package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantora/compass/internal/contracts"
)

// decideCmd represents the decide command
var decideCmd = &cobra.Command{
	Use:   "decide [level] [name]",
	Short: "Answer a directional decision query",
	Long: `Answers a directional decision query (UP / DOWN / NO_IMPACT) over the
stored calibrated signals.

Level is "sector" or "ticker". For ticker-level queries, --tickers can
widen the match to a basket; without it, the name itself is matched
against each signal's ticker list.

Example:
  go run ./cmd/compass decide sector it-technology
  go run ./cmd/compass decide sector it-energy --from 2025-05-01 --to 2025-05-14
  go run ./cmd/compass decide ticker AAPL --as-of 2025-05-15`,
	Args: cobra.ExactArgs(2),
	RunE: runDecide,
}

var (
	decideTickers string
	decideFrom    string
	decideTo      string
	decideAsOf    string
)

func init() {
	rootCmd.AddCommand(decideCmd)

	// Flags
	decideCmd.Flags().StringVar(&decideTickers, "tickers", "", "comma-separated ticker basket (ticker level only)")
	decideCmd.Flags().StringVar(&decideFrom, "from", "", "start date, YYYY-MM-DD inclusive")
	decideCmd.Flags().StringVar(&decideTo, "to", "", "end date, YYYY-MM-DD inclusive")
	decideCmd.Flags().StringVar(&decideAsOf, "as-of", "", "reference date for recency weighting")
}

func runDecide(cmd *cobra.Command, args []string) error {
	level := contracts.TargetLevel(args[0])
	if level != contracts.TargetSector && level != contracts.TargetTicker {
		return fmt.Errorf("invalid level %q (valid: sector, ticker)", args[0])
	}

	query := contracts.DecisionQuery{
		Level:    level,
		Name:     args[1],
		FromDate: decideFrom,
		ToDate:   decideTo,
		AsOf:     decideAsOf,
	}
	if decideTickers != "" {
		query.Tickers = strings.Split(decideTickers, ",")
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := d.decisions.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("decision query failed: %w", err)
	}

	dec := resp.Decision
	fmt.Printf("=== Decision: %s %s ===\n\n", resp.Level, resp.Name)
	fmt.Printf("  Label:         %s\n", dec.Label)
	fmt.Printf("  Weighted mean: %.3f\n", dec.WeightedMean)
	fmt.Printf("  Consensus:     %.3f\n", dec.Consensus)
	fmt.Printf("  Confidence:    %.3f\n", dec.Confidence)
	fmt.Printf("  Rationale:     %s\n", dec.Rationale)
	if len(dec.TopSignals) > 0 {
		fmt.Printf("  Top signals:   %s\n", strings.Join(dec.TopSignals, ", "))
	}

	return nil
}
