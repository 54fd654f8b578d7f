package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quantora/compass/internal/calibration"
	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/pkg/logger"
)

// CalibrationHandler triggers calibration runs and serves their results.
type CalibrationHandler struct {
	service    *calibration.Service
	resultRepo contracts.ResultRepository
	logger     *logger.Logger
}

// NewCalibrationHandler creates a new calibration handler
func NewCalibrationHandler(service *calibration.Service, resultRepo contracts.ResultRepository, log *logger.Logger) *CalibrationHandler {
	return &CalibrationHandler{
		service:    service,
		resultRepo: resultRepo,
		logger:     log,
	}
}

// RunRequest represents a calibration run request
type RunRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, defaults to yesterday (UTC)
	// Source selects where signals come from: "classifier" pulls a fresh
	// batch, "stored" reprocesses what is already persisted.
	Source string `json:"source"`
}

// Run triggers a calibration run for one date.
// POST /api/calibration/run
func (h *CalibrationHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if req.Date == "" {
		req.Date = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}
	if req.Source == "" {
		req.Source = "classifier"
	}

	h.logger.WithFields(map[string]interface{}{
		"date":   req.Date,
		"source": req.Source,
	}).Info("Calibration run triggered")

	var summary *calibration.RunSummary
	var err error
	switch req.Source {
	case "classifier":
		summary, err = h.service.RunDay(ctx, req.Date)
	case "stored":
		summary, err = h.service.RunStored(ctx, req.Date)
	default:
		respondError(w, http.StatusBadRequest, "Invalid source (valid: classifier, stored)")
		return
	}

	if err != nil {
		h.logger.WithError(err).Error("Calibration run failed")
		respondError(w, http.StatusInternalServerError, "Calibration run failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"summary": summary,
	})
}

// GetResult returns the calibrated result for one (sector, date) group.
// GET /api/calibration/results/{sector}/{date}
func (h *CalibrationHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	key := contracts.GroupKey{Sector: vars["sector"], DateKey: vars["date"]}

	result, err := h.resultRepo.GetByKey(ctx, key)
	if err != nil {
		h.logger.WithError(err).WithField("key", key.String()).Error("Failed to get result")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve result")
		return
	}
	if result == nil {
		respondError(w, http.StatusNotFound, "No result for this sector and date")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListResults returns calibrated results for a sector over a date range.
// GET /api/calibration/results?sector=&from=&to=
func (h *CalibrationHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	sector := q.Get("sector")
	if sector == "" {
		respondError(w, http.StatusBadRequest, "'sector' query parameter is required")
		return
	}

	results, err := h.resultRepo.ListBySector(ctx, sector, q.Get("from"), q.Get("to"))
	if err != nil {
		h.logger.WithError(err).WithField("sector", sector).Error("Failed to list results")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve results")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sector":  sector,
		"count":   len(results),
		"results": results,
	})
}
