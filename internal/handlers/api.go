package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/common"
)

// APIHandler serves version and health endpoints
type APIHandler struct {
	logger arbor.ILogger
}

func NewAPIHandler(logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		logger: logger,
	}
}

// Version handles GET /api/version
func (h *APIHandler) Version(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// Health handles GET /api/health
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "fiscus",
	})
}

// NotFound handles unmatched routes
func (h *APIHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn().Str("path", r.URL.Path).Msg("Route not found")
	WriteError(w, http.StatusNotFound, "Not found")
}
