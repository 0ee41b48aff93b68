package interfaces

import (
	"context"

	"github.com/ternarybob/fiscus/internal/models"
)

// EmbeddingProvider is the external model collaborator: anything that maps
// text to a fixed-dimension float32 vector satisfies it. Providers may be
// expensive to initialize; Init is called once before the first Encode.
type EmbeddingProvider interface {
	Init(ctx context.Context) error
	Encode(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Name() string
}

// EmbeddingService generates vector embeddings with caching and lazy
// provider initialization. Blank text maps to the zero vector without
// touching the provider.
type EmbeddingService interface {
	// EmbedText generates an embedding for raw text
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedChunks generates and sets embeddings for all chunks in place
	EmbedChunks(ctx context.Context, chunks []models.Chunk) error

	// EnsureReady forces provider initialization (normally lazy on first use)
	EnsureReady(ctx context.Context) error

	// IsAvailable reports whether the provider can be initialized
	IsAvailable(ctx context.Context) bool

	Dimension() int
	ModelName() string

	// CacheSize returns the number of cached embeddings
	CacheSize() int
}
