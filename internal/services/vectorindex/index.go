package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
)

var (
	// ErrDimensionMismatch indicates an embedding length differs from the
	// index's configured dimension
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptPersistence indicates the saved artifacts are missing or
	// mutually inconsistent
	ErrCorruptPersistence = errors.New("corrupt knowledge base artifacts")
)

// Index is a flat, exact L2 nearest-neighbor store. Vectors and entries are
// parallel slices kept in lockstep: position i in one always corresponds to
// position i in the other. Knowledge bases here are small (tens to low
// thousands of chunks), so brute-force search is exact and fast enough.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	entries   []models.IndexEntry
	logger    arbor.ILogger
}

// New creates a vector index with the given embedding dimension
func New(dimension int, logger arbor.ILogger) interfaces.VectorIndex {
	return &Index{
		dimension: dimension,
		logger:    logger,
	}
}

// Add appends all chunk embeddings and (text, metadata) entries in order.
// Validation happens before any mutation, so a dimension mismatch leaves
// the index untouched.
func (idx *Index) Add(chunks []models.Chunk) error {
	if len(chunks) == 0 {
		idx.logger.Warn().Msg("No chunks to add")
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i, chunk := range chunks {
		if len(chunk.Embedding) != idx.dimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, index expects %d",
				ErrDimensionMismatch, i, len(chunk.Embedding), idx.dimension)
		}
	}

	for _, chunk := range chunks {
		idx.vectors = append(idx.vectors, chunk.Embedding)
		// Embedding is dropped from the entry; the vector slice owns it now
		idx.entries = append(idx.entries, models.IndexEntry{
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		})
	}

	idx.logger.Debug().
		Int("added", len(chunks)).
		Int("total", len(idx.entries)).
		Msg("Added chunks to vector index")

	return nil
}

// Search returns the k nearest entries by Euclidean distance, best first
func (idx *Index) Search(query []float32, k int) ([]models.SearchResult, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			ErrDimensionMismatch, len(query), idx.dimension)
	}
	if k <= 0 {
		k = 5
	}
	if k > len(idx.vectors) {
		k = len(idx.vectors)
	}

	type scored struct {
		pos  int
		dist float64
	}
	distances := make([]scored, len(idx.vectors))
	for i, vec := range idx.vectors {
		distances[i] = scored{pos: i, dist: l2Distance(query, vec)}
	}
	sort.Slice(distances, func(a, b int) bool { return distances[a].dist < distances[b].dist })

	results := make([]models.SearchResult, 0, k)
	for _, d := range distances[:k] {
		results = append(results, models.SearchResult{
			Entry:    idx.entries[d.pos],
			Distance: d.dist,
		})
	}
	return results, nil
}

// SearchWithScore converts L2 distance to a similarity in (0, 1] via
// exp(-distance) and filters out results below threshold. The transform is
// an uncalibrated heuristic kept for compatibility; scores from different
// embedding models are not comparable.
func (idx *Index) SearchWithScore(query []float32, k int, threshold float64) ([]models.ScoredResult, error) {
	results, err := idx.Search(query, k)
	if err != nil {
		return nil, err
	}

	scored := make([]models.ScoredResult, 0, len(results))
	for _, r := range results {
		similarity := math.Exp(-r.Distance)
		if threshold > 0 && similarity < threshold {
			continue
		}
		scored = append(scored, models.ScoredResult{
			Entry:      r.Entry,
			Similarity: similarity,
		})
	}
	return scored, nil
}

// Clear resets the index to zero entries
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = nil
	idx.entries = nil
	idx.logger.Info().Msg("Vector index cleared")
}

// Count returns the number of indexed entries
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Stats reports index counters. TotalChunks and IndexSize diverging means
// the lockstep invariant is broken.
func (idx *Index) Stats() models.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.entries) != len(idx.vectors) {
		idx.logger.Error().
			Int("entries", len(idx.entries)).
			Int("vectors", len(idx.vectors)).
			Msg("Vector index invariant violated: entry/vector count mismatch")
	}

	return models.IndexStats{
		TotalChunks:        len(idx.entries),
		EmbeddingDimension: idx.dimension,
		IndexSize:          len(idx.vectors),
	}
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
