package models

// Chunk is a bounded span of document text, the unit of retrieval.
// Metadata always carries chunk_index and total_chunks after chunking;
// callers may attach arbitrary extra fields (file_name, section, page).
type Chunk struct {
	Text      string                 `json:"text"`
	Metadata  map[string]interface{} `json:"metadata"`
	Embedding []float32              `json:"embedding,omitempty"`
}

// IndexEntry is the persisted pairing of a chunk's text and metadata with
// its position in the similarity structure. The embedding is dropped after
// indexing; the vector lives in the parallel slice at the same position.
type IndexEntry struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
}

// SearchResult pairs an index entry with its L2 distance to the query
type SearchResult struct {
	Entry    IndexEntry `json:"entry"`
	Distance float64    `json:"distance"`
}

// ScoredResult pairs an index entry with a similarity score in (0, 1]
type ScoredResult struct {
	Entry      IndexEntry `json:"entry"`
	Similarity float64    `json:"similarity"`
}

// IndexStats reports vector index counters. TotalChunks and IndexSize must
// be equal at all times; divergence indicates index corruption.
type IndexStats struct {
	TotalChunks        int `json:"total_chunks"`
	EmbeddingDimension int `json:"embedding_dimension"`
	IndexSize          int `json:"index_size"`
}
