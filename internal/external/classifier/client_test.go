package classifier

import (
	"encoding/json"
	"testing"

	"github.com/quantora/compass/internal/contracts"
)

func TestResolveSignal(t *testing.T) {
	tests := []struct {
		name        string
		dateKey     string
		publishedAt string
		want        string
	}{
		{"explicit date key wins", "2025-05-14", "2025-05-13T09:30:00Z", "2025-05-14"},
		{"derived from timestamp", "", "2025-05-13T09:30:00Z", "2025-05-13"},
		{"derived from plain date", "", "2025-05-13", "2025-05-13"},
		{"malformed timestamp passes through", "", "garbage", "garbage"},
		{"nothing to resolve", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wireSignal{
				Signal:      contracts.Signal{ID: "n-1", Sector: "it-technology", DateKey: tt.dateKey},
				PublishedAt: tt.publishedAt,
			}
			got := resolveSignal(w)
			if got.DateKey != tt.want {
				t.Errorf("resolveSignal() date key = %q, want %q", got.DateKey, tt.want)
			}
		})
	}
}

func TestWireSignalDecoding(t *testing.T) {
	payload := `{
		"news_id": "n-42",
		"sector": "it-energy",
		"tickers": ["XOM"],
		"sentiment_score": -2.5,
		"confidence": 0.85,
		"news_type": "regulatory",
		"evidence_phrases": ["fined", "violation"],
		"published_at": "2025-05-14T16:05:00+09:00"
	}`

	var w wireSignal
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	s := resolveSignal(w)
	if s.ID != "n-42" {
		t.Errorf("ID = %q, want n-42", s.ID)
	}
	if s.DateKey != "2025-05-14" {
		t.Errorf("DateKey = %q, want 2025-05-14", s.DateKey)
	}
	if s.SentimentScore != -2.5 || s.Confidence != 0.85 {
		t.Errorf("scores = (%v, %v), want (-2.5, 0.85)", s.SentimentScore, s.Confidence)
	}
	if s.AdjustedSentiment != nil {
		t.Error("fresh wire signal should carry no derived fields")
	}
}
