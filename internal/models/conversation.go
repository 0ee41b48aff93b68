package models

// SourceRef describes one retrieved source backing an answer.
// Text is truncated for display; Similarity is the retrieval score.
type SourceRef struct {
	Text       string                 `json:"text"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// ConversationExchange is one question/answer round. History is bounded
// and session-local; it is never persisted.
type ConversationExchange struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Sources  []SourceRef `json:"sources"`
}

// Answer is the result of a RAG query. Confidence is the similarity of the
// single best retrieved source, not an average.
type Answer struct {
	Answer      string      `json:"answer"`
	Sources     []SourceRef `json:"sources"`
	Confidence  float64     `json:"confidence"`
	MetricsUsed []string    `json:"metrics_used,omitempty"`
}

// KnowledgeBaseStats summarizes the state of the knowledge base
type KnowledgeBaseStats struct {
	TotalChunks        int `json:"total_chunks"`
	EmbeddingDimension int `json:"embedding_dimension"`
	IndexSize          int `json:"index_size"`
	ConversationLength int `json:"conversation_length"`
}
