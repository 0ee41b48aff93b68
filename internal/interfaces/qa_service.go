package interfaces

import (
	"context"

	"github.com/ternarybob/fiscus/internal/models"
)

// DocumentInput is one document handed to batch ingestion
type DocumentInput struct {
	Text     string
	Metadata map[string]interface{}
}

// QAService orchestrates the RAG pipeline: ingestion (chunk, embed, index)
// and question answering (retrieve, synthesize, cite).
type QAService interface {
	// AddDocument ingests one document and returns the number of chunks
	// indexed. Blank text is a logged no-op returning zero. Ingestion is
	// atomic per document: on embedding failure nothing is indexed.
	AddDocument(ctx context.Context, text string, metadata map[string]interface{}) (int, error)

	// AddDocuments ingests documents in parallel, checking ctx between
	// documents. A failed document does not roll back earlier ones.
	AddDocuments(ctx context.Context, docs []DocumentInput) (int, error)

	// AnswerQuestion runs the query pipeline. Blank questions and empty
	// retrieval sets produce fixed answers with confidence 0, never errors.
	AnswerQuestion(ctx context.Context, question string, k int, minSimilarity float64) (*models.Answer, error)

	// AnswerWithMetrics additionally blends precomputed financial metrics
	// into the answer when question keywords match known metric groups
	AnswerWithMetrics(ctx context.Context, question string, k int, minSimilarity float64, metrics map[string]float64) (*models.Answer, error)

	// Clear resets the knowledge base and conversation history
	Clear()

	// History returns the bounded conversation history, oldest first
	History() []models.ConversationExchange

	Stats() models.KnowledgeBaseStats

	SaveKnowledgeBase(basePath string) error
	LoadKnowledgeBase(basePath string) error
}
