package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/internal/decision"
	"github.com/quantora/compass/pkg/logger"
)

// DecisionHandler answers directional decision queries.
type DecisionHandler struct {
	service *decision.Service
	logger  *logger.Logger
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(service *decision.Service, log *logger.Logger) *DecisionHandler {
	return &DecisionHandler{
		service: service,
		logger:  log,
	}
}

// Query resolves a decision query for a sector or ticker.
// POST /api/decision/query
func (h *DecisionHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var query contracts.DecisionQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if query.Level == "" {
		query.Level = contracts.TargetSector
	}
	if query.Name == "" {
		respondError(w, http.StatusBadRequest, "'name' is required")
		return
	}

	resp, err := h.service.Query(ctx, query)
	if err != nil {
		h.logger.WithError(err).Error("Decision query failed")
		respondError(w, http.StatusInternalServerError, "Decision query failed")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
