package models

import "time"

// Document represents a raw ingested document as produced by an external
// extractor (PDF, Excel). Content is the full extracted text; extraction
// mechanics are outside this system.
type Document struct {
	ID         string                 `json:"id"` // doc_<uuid>
	FileName   string                 `json:"file_name"`
	FileType   string                 `json:"file_type"` // pdf, excel
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata"`
	ChunkCount int                    `json:"chunk_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentStats represents statistics about stored documents
type DocumentStats struct {
	TotalDocuments     int       `json:"total_documents"`
	TotalChunks        int       `json:"total_chunks"`
	AverageContentSize int       `json:"average_content_size"`
	LastUpdated        time.Time `json:"last_updated"`
}
