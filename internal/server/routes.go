package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Documents and question answering
	mux.HandleFunc("/api/documents", s.app.QAHandler.AddDocument) // POST - ingest document
	mux.HandleFunc("/api/ask", s.app.QAHandler.Ask)               // POST - answer question
	mux.HandleFunc("/api/clear", s.app.QAHandler.Clear)           // POST - reset knowledge base
	mux.HandleFunc("/api/stats", s.app.QAHandler.Stats)           // GET - knowledge base stats

	// API routes - Financial variables and metrics
	mux.HandleFunc("/api/variables", s.app.VariableHandler.Resolve) // POST - resolve multi-source variables
	mux.HandleFunc("/api/metrics", s.app.VariableHandler.Metrics)   // GET - computed financial ratios

	// API routes - Service info
	mux.HandleFunc("/api/version", s.app.APIHandler.Version)
	mux.HandleFunc("/api/health", s.app.APIHandler.Health)

	// Catch-all for unmatched routes
	mux.HandleFunc("/", s.handleRoot)

	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.app.APIHandler.NotFound(w, r)
		return
	}
	s.app.APIHandler.Health(w, r)
}
