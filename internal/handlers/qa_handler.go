package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/common"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
	"github.com/ternarybob/fiscus/internal/services/metrics"
)

// QAHandler serves document ingestion and question answering endpoints
type QAHandler struct {
	qaService  interfaces.QAService
	storage    interfaces.StorageManager
	calculator *metrics.Calculator
	config     *common.Config
	logger     arbor.ILogger
}

func NewQAHandler(qaService interfaces.QAService, storage interfaces.StorageManager, calculator *metrics.Calculator, config *common.Config, logger arbor.ILogger) *QAHandler {
	return &QAHandler{
		qaService:  qaService,
		storage:    storage,
		calculator: calculator,
		config:     config,
		logger:     logger,
	}
}

type addDocumentRequest struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
}

type askRequest struct {
	Question      string   `json:"question"`
	TopK          int      `json:"k"`
	MinSimilarity *float64 `json:"min_similarity"`
}

// AddDocument handles POST /api/documents
func (h *QAHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req addDocumentRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		WriteError(w, http.StatusBadRequest, "Document text is required")
		return
	}

	chunksAdded, err := h.qaService.AddDocument(r.Context(), req.Text, req.Metadata)
	if err != nil {
		h.logger.Error().Err(err).Msg("Document ingestion failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.registerDocument(req.Text, req.Metadata, chunksAdded)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"chunks_added": chunksAdded,
	})
}

// registerDocument records the ingested document in persistent storage.
// Registry failures are logged but never fail the ingestion itself.
func (h *QAHandler) registerDocument(text string, metadata map[string]interface{}, chunkCount int) {
	doc := &models.Document{
		ID:         common.NewDocumentID(),
		Content:    text,
		Metadata:   metadata,
		ChunkCount: chunkCount,
		CreatedAt:  time.Now(),
	}
	if name, ok := metadata["file_name"].(string); ok {
		doc.FileName = name
	} else if name, ok := metadata["filename"].(string); ok {
		doc.FileName = name
	}
	if fileType, ok := metadata["file_type"].(string); ok {
		doc.FileType = fileType
	}

	if err := h.storage.DocumentStorage().SaveDocument(doc); err != nil {
		h.logger.Warn().Err(err).Str("doc_id", doc.ID).Msg("Failed to register document")
	}
}

// Ask handles POST /api/ask
func (h *QAHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req askRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = h.config.RAG.TopK
	}
	minSimilarity := h.config.RAG.MinSimilarity
	if req.MinSimilarity != nil {
		minSimilarity = *req.MinSimilarity
	}

	// Stored variables blend computed financial metrics into answers for
	// metric-flavored questions; without them this is plain retrieval QA.
	variables, err := h.storage.VariableStorage().GetAllResolvedVariables()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load resolved variables")
		variables = nil
	}

	var answer *models.Answer
	if len(variables) > 0 {
		computed := h.calculator.Calculate(variables)
		answer, err = h.qaService.AnswerWithMetrics(r.Context(), req.Question, topK, minSimilarity, computed)
	} else {
		answer, err = h.qaService.AnswerQuestion(r.Context(), req.Question, topK, minSimilarity)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Question answering failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := map[string]interface{}{
		"success":    true,
		"answer":     answer.Answer,
		"sources":    answer.Sources,
		"confidence": answer.Confidence,
	}
	if len(answer.MetricsUsed) > 0 {
		response["metrics_used"] = answer.MetricsUsed
	}
	WriteJSON(w, http.StatusOK, response)
}

// Clear handles POST /api/clear
func (h *QAHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	h.qaService.Clear()

	if err := h.storage.DocumentStorage().DeleteAllDocuments(); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to clear document registry")
	}
	if err := h.storage.VariableStorage().DeleteAllVariables(); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to clear resolved variables")
	}

	h.logger.Info().Msg("Knowledge base cleared")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Knowledge base cleared",
	})
}

// Stats handles GET /api/stats
func (h *QAHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats := h.qaService.Stats()

	documentCount, err := h.storage.DocumentStorage().CountDocuments()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count documents")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"total_chunks":        stats.TotalChunks,
		"embedding_dimension": stats.EmbeddingDimension,
		"index_size":          stats.IndexSize,
		"conversation_length": stats.ConversationLength,
		"documents":           documentCount,
	})
}
