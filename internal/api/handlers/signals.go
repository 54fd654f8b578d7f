package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/pkg/logger"
)

// SignalHandler serves stored classifier signals.
type SignalHandler struct {
	signalRepo contracts.SignalRepository
	logger     *logger.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(signalRepo contracts.SignalRepository, log *logger.Logger) *SignalHandler {
	return &SignalHandler{
		signalRepo: signalRepo,
		logger:     log,
	}
}

// List returns signals matching the query parameters.
// GET /api/signals?sector=&tickers=&from=&to=
func (h *SignalHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := contracts.SignalFilter{
		Sector:   q.Get("sector"),
		FromDate: q.Get("from"),
		ToDate:   q.Get("to"),
	}
	if tickers := q.Get("tickers"); tickers != "" {
		filter.Tickers = strings.Split(tickers, ",")
	}

	signals, err := h.signalRepo.List(ctx, filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list signals")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve signals")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(signals),
		"signals": signals,
	})
}

// GetGroup returns all signals of one (sector, date_key) group.
// GET /api/signals/{sector}/{date}
func (h *SignalHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	key := contracts.GroupKey{Sector: vars["sector"], DateKey: vars["date"]}

	signals, err := h.signalRepo.GetGroup(ctx, key)
	if err != nil {
		h.logger.WithError(err).WithField("key", key.String()).Error("Failed to get signal group")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve signal group")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sector":   key.Sector,
		"date_key": key.DateKey,
		"count":    len(signals),
		"signals":  signals,
	})
}
