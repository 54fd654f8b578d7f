package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/internal/decision"
	"github.com/quantora/compass/pkg/config"
	"github.com/quantora/compass/pkg/logger"
)

type fakeSignalRepo struct {
	signals []contracts.Signal
}

func (f *fakeSignalRepo) SaveBatch(ctx context.Context, signals []contracts.Signal) error {
	f.signals = append(f.signals, signals...)
	return nil
}

func (f *fakeSignalRepo) List(ctx context.Context, filter contracts.SignalFilter) ([]contracts.Signal, error) {
	var out []contracts.Signal
	for _, s := range f.signals {
		if filter.Sector != "" && s.Sector != filter.Sector {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSignalRepo) GetGroup(ctx context.Context, key contracts.GroupKey) ([]contracts.Signal, error) {
	var out []contracts.Signal
	for _, s := range f.signals {
		if s.Sector == key.Sector && s.DateKey == key.DateKey {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeDecisionRepo struct {
	saved int
}

func (f *fakeDecisionRepo) Save(ctx context.Context, query contracts.DecisionQuery, d contracts.Decision) error {
	f.saved++
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error"})
}

func TestSignalHandler_List(t *testing.T) {
	repo := &fakeSignalRepo{signals: []contracts.Signal{
		{ID: "n-1", Sector: "it-technology", SentimentScore: 2.0, Confidence: 0.9, NewsType: "earnings", DateKey: "2025-05-14"},
		{ID: "n-2", Sector: "it-energy", SentimentScore: -1.0, Confidence: 0.5, NewsType: "macro", DateKey: "2025-05-14"},
	}}
	h := NewSignalHandler(repo, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/signals?sector=it-technology", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int                `json:"count"`
		Signals []contracts.Signal `json:"signals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Signals, 1)
	assert.Equal(t, "n-1", body.Signals[0].ID)
}

func TestSignalHandler_GetGroup(t *testing.T) {
	repo := &fakeSignalRepo{signals: []contracts.Signal{
		{ID: "n-1", Sector: "it-technology", SentimentScore: 2.0, Confidence: 0.9, DateKey: "2025-05-14"},
	}}
	h := NewSignalHandler(repo, testLogger())

	r := mux.NewRouter()
	r.HandleFunc("/api/signals/{sector}/{date}", h.GetGroup).Methods("GET")

	req := httptest.NewRequest(http.MethodGet, "/api/signals/it-technology/2025-05-14", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestDecisionHandler_Query(t *testing.T) {
	signalRepo := &fakeSignalRepo{signals: []contracts.Signal{
		{ID: "n-1", Sector: "it-technology", SentimentScore: 2.0, Confidence: 0.9, DateKey: "2025-05-14"},
		{ID: "n-2", Sector: "it-technology", SentimentScore: 1.5, Confidence: 0.8, DateKey: "2025-05-14"},
	}}
	decisionRepo := &fakeDecisionRepo{}

	svc := decision.NewService(signalRepo, decisionRepo, decision.DefaultOptions(), nil, testLogger())
	h := NewDecisionHandler(svc, testLogger())

	body := `{"level":"sector","name":"it-technology"}`
	req := httptest.NewRequest(http.MethodPost, "/api/decision/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Query(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp contracts.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, contracts.TargetSector, resp.Level)
	assert.Equal(t, "it-technology", resp.Name)
	assert.Equal(t, contracts.LabelUp, resp.Decision.Label)
	assert.Equal(t, 1, decisionRepo.saved)
}

func TestDecisionHandler_Query_BadRequest(t *testing.T) {
	svc := decision.NewService(&fakeSignalRepo{}, &fakeDecisionRepo{}, decision.DefaultOptions(), nil, testLogger())
	h := NewDecisionHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/decision/query", strings.NewReader(`{"level":"sector"}`))
	rec := httptest.NewRecorder()
	h.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
