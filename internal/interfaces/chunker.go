package interfaces

import (
	"github.com/ternarybob/fiscus/internal/models"
)

// ChunkerService splits raw document text into boundary-aware chunks.
// Empty or whitespace-only input yields zero chunks, never an error.
type ChunkerService interface {
	// Chunk packs paragraphs (then sentences) greedily up to the chunk size
	Chunk(text string, metadata map[string]interface{}) []models.Chunk

	// ChunkWithOverlap slides a fixed window with sentence-boundary backoff
	// so consecutive chunks share a trailing/leading span
	ChunkWithOverlap(text string, metadata map[string]interface{}) []models.Chunk
}
