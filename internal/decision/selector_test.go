package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantora/compass/internal/contracts"
)

func testSignals() []contracts.Signal {
	return []contracts.Signal{
		{ID: "t1", Sector: "Telecom", Tickers: []string{"BHARTIARTL.NS", "RELIANCE.NS"}, DateKey: "2025-09-24"},
		{ID: "t2", Sector: "Telecom", Tickers: []string{"BHARTIARTL.NS"}, DateKey: "2025-09-26"},
		{ID: "e1", Sector: "Energy", Tickers: []string{"RELIANCE.NS"}, DateKey: "2025-09-25"},
		{ID: "e2", Sector: "Energy", Tickers: []string{"ONGC.NS"}, DateKey: "2025-09-26"},
	}
}

func TestSelect_BySector(t *testing.T) {
	out := Select(testSignals(), contracts.DecisionQuery{
		Level: contracts.TargetSector,
		Name:  "Telecom",
	})
	assert.Len(t, out, 2)
	for _, s := range out {
		assert.Equal(t, "Telecom", s.Sector)
	}
}

func TestSelect_ByTickerIntersection(t *testing.T) {
	out := Select(testSignals(), contracts.DecisionQuery{
		Level:   contracts.TargetTicker,
		Name:    "RELIANCE.NS",
		Tickers: []string{"RELIANCE.NS"},
	})
	assert.Len(t, out, 2) // t1 crosses sector lines, e1 matches directly
}

func TestSelect_TickerNameFallback(t *testing.T) {
	out := Select(testSignals(), contracts.DecisionQuery{
		Level: contracts.TargetTicker,
		Name:  "ONGC.NS",
	})
	assert.Len(t, out, 1)
	assert.Equal(t, "e2", out[0].ID)
}

func TestSelect_DateRange(t *testing.T) {
	out := Select(testSignals(), contracts.DecisionQuery{
		Level:    contracts.TargetSector,
		Name:     "Telecom",
		FromDate: "2025-09-25",
		ToDate:   "2025-09-26",
	})
	assert.Len(t, out, 1)
	assert.Equal(t, "t2", out[0].ID)
}

func TestSelect_NoMatches(t *testing.T) {
	out := Select(testSignals(), contracts.DecisionQuery{
		Level: contracts.TargetSector,
		Name:  "Utilities",
	})
	assert.Empty(t, out)
}
