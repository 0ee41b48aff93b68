package interfaces

import (
	"github.com/ternarybob/fiscus/internal/models"
)

// VectorIndex stores embeddings alongside chunk entries and supports exact
// nearest-neighbor search. Entry i always corresponds to vector i; the two
// collections are kept in lockstep.
type VectorIndex interface {
	// Add appends all chunk embeddings and entries in order. Fails with
	// ErrDimensionMismatch if any embedding length differs from the
	// configured dimension; nothing is inserted on failure.
	Add(chunks []models.Chunk) error

	// Search returns the k nearest entries by L2 distance, best first.
	// k is clamped to the entry count; an empty index yields no results.
	Search(query []float32, k int) ([]models.SearchResult, error)

	// SearchWithScore converts distance to similarity via exp(-distance)
	// and drops results below threshold (threshold <= 0 disables filtering)
	SearchWithScore(query []float32, k int, threshold float64) ([]models.ScoredResult, error)

	// Clear resets to zero entries; single-entry removal is not supported
	Clear()

	// Save writes the <base>.index and <base>.chunks companion artifacts
	Save(basePath string) error

	// Load replaces in-memory state from the companion artifacts.
	// All-or-nothing: on any error the prior state is preserved.
	Load(basePath string) error

	Stats() models.IndexStats
	Count() int
}
