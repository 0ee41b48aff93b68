package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
	"golang.org/x/time/rate"
)

// ErrUnavailable indicates the embedding provider failed to initialize
// or encode
var ErrUnavailable = errors.New("embedding provider unavailable")

// Service implements EmbeddingService on top of a provider, adding a
// content-hash cache, rate limiting, and lazy provider initialization.
// The cache is process-local and unbounded within a session.
type Service struct {
	provider interfaces.EmbeddingProvider
	limiter  *rate.Limiter
	logger   arbor.ILogger

	initOnce sync.Once
	initErr  error

	cacheMu sync.RWMutex
	cache   map[string][]float32
}

// NewService creates a new embedding service
func NewService(provider interfaces.EmbeddingProvider, callsPerSecond float64, burst int, logger arbor.ILogger) interfaces.EmbeddingService {
	if callsPerSecond <= 0 {
		callsPerSecond = 50
	}
	if burst <= 0 {
		burst = 10
	}
	return &Service{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(callsPerSecond), burst),
		logger:   logger,
		cache:    make(map[string][]float32),
	}
}

// EnsureReady initializes the provider. Initialization is lazy on the
// first embed; callers wanting the cost up front invoke this explicitly.
func (s *Service) EnsureReady(ctx context.Context) error {
	s.initOnce.Do(func() {
		start := time.Now()
		if err := s.provider.Init(ctx); err != nil {
			s.initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			s.logger.Error().Err(err).Str("provider", s.provider.Name()).Msg("Embedding provider failed to initialize")
			return
		}
		s.logger.Info().
			Str("provider", s.provider.Name()).
			Int("dimension", s.provider.Dimension()).
			Dur("duration", time.Since(start)).
			Msg("Embedding provider ready")
	})
	return s.initErr
}

// EmbedText generates an embedding for text. Blank text maps to the zero
// vector without touching the provider or the cache.
func (s *Service) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, s.provider.Dimension()), nil
	}

	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	key := cacheKey(text)
	s.cacheMu.RLock()
	if cached, ok := s.cache[key]; ok {
		s.cacheMu.RUnlock()
		return cached, nil
	}
	s.cacheMu.RUnlock()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit wait: %w", err)
	}

	embedding, err := s.provider.Encode(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: encode failed: %v", ErrUnavailable, err)
	}
	if len(embedding) != s.provider.Dimension() {
		return nil, fmt.Errorf("%w: provider returned %d dimensions, expected %d",
			ErrUnavailable, len(embedding), s.provider.Dimension())
	}

	s.cacheMu.Lock()
	s.cache[key] = embedding
	s.cacheMu.Unlock()

	return embedding, nil
}

// EmbedChunks generates embeddings for all chunks in place. Any failure
// aborts the batch so the caller can abandon the document.
func (s *Service) EmbedChunks(ctx context.Context, chunks []models.Chunk) error {
	for i := range chunks {
		embedding, err := s.EmbedText(ctx, chunks[i].Text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of %d: %w", i, len(chunks), err)
		}
		chunks[i].Embedding = embedding
	}

	s.logger.Debug().
		Int("chunks", len(chunks)).
		Int("cache_size", s.CacheSize()).
		Msg("Embedded chunks")

	return nil
}

// IsAvailable reports whether the provider can be initialized
func (s *Service) IsAvailable(ctx context.Context) bool {
	return s.EnsureReady(ctx) == nil
}

func (s *Service) Dimension() int {
	return s.provider.Dimension()
}

func (s *Service) ModelName() string {
	return s.provider.Name()
}

// CacheSize returns the number of cached embeddings
func (s *Service) CacheSize() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return len(s.cache)
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
