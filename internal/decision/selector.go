package decision

import "github.com/quantora/compass/internal/contracts"

// Select slices a calibrated dataset down to the signals a query targets.
// This is caller-side pre-processing: the engine itself accepts any list
// regardless of how it was filtered.
func Select(signals []contracts.Signal, query contracts.DecisionQuery) []contracts.Signal {
	out := make([]contracts.Signal, 0, len(signals))
	for _, s := range signals {
		if !matchesTarget(&s, query) {
			continue
		}
		if query.FromDate != "" && s.DateKey < query.FromDate {
			continue
		}
		if query.ToDate != "" && s.DateKey > query.ToDate {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesTarget(s *contracts.Signal, query contracts.DecisionQuery) bool {
	switch query.Level {
	case contracts.TargetSector:
		return s.Sector == query.Name
	case contracts.TargetTicker:
		wanted := query.Tickers
		if len(wanted) == 0 && query.Name != "" {
			wanted = []string{query.Name}
		}
		for _, t := range s.Tickers {
			for _, w := range wanted {
				if t == w {
					return true
				}
			}
		}
		return false
	default:
		return true
	}
}
