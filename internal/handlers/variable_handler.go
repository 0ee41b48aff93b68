package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
	"github.com/ternarybob/fiscus/internal/services/metrics"
)

// VariableHandler serves financial variable resolution and derived metrics
type VariableHandler struct {
	resolver   interfaces.ResolverService
	calculator *metrics.Calculator
	storage    interfaces.StorageManager
	logger     arbor.ILogger
}

func NewVariableHandler(resolver interfaces.ResolverService, calculator *metrics.Calculator, storage interfaces.StorageManager, logger arbor.ILogger) *VariableHandler {
	return &VariableHandler{
		resolver:   resolver,
		calculator: calculator,
		storage:    storage,
		logger:     logger,
	}
}

type resolveVariablesRequest struct {
	Sources []map[string]models.SourceValue `json:"sources"`
}

// Resolve handles POST /api/variables. Each source is a map of variable
// key to extracted value; conflicting extractions are reconciled into one
// value per key and persisted for metric computation.
func (h *VariableHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req resolveVariablesRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}

	if len(req.Sources) == 0 {
		WriteError(w, http.StatusBadRequest, "At least one source is required")
		return
	}

	combined := h.resolver.Combine(req.Sources)
	resolved, err := h.resolver.ResolveAll(r.Context(), combined)
	if err != nil {
		h.logger.Error().Err(err).Msg("Variable resolution failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.storage.VariableStorage().SaveResolvedVariables(resolved); err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist resolved variables")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().
		Int("sources", len(req.Sources)).
		Int("variables", len(resolved)).
		Msg("Variables resolved")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"resolved": resolved,
	})
}

// Metrics handles GET /api/metrics, computing financial ratios from the
// stored resolved variables
func (h *VariableHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	variables, err := h.storage.VariableStorage().GetAllResolvedVariables()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load resolved variables")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	computed := h.calculator.Calculate(variables)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"variables": variables,
		"metrics":   computed,
	})
}
