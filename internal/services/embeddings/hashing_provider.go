package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// HashingProvider is a deterministic feature-hashing embedder: each token
// is hashed into one of Dimension buckets with a hash-derived sign, and the
// resulting term-frequency vector is L2-normalized. It needs no external
// model or corpus preparation, which makes it the default collaborator for
// tests and offline use. Any provider satisfying EmbeddingProvider can
// replace it at configuration time.
type HashingProvider struct {
	dimension int
}

// NewHashingProvider creates a hashing embedding provider
func NewHashingProvider(dimension int) *HashingProvider {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashingProvider{dimension: dimension}
}

func (p *HashingProvider) Init(ctx context.Context) error {
	if p.dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension: %d", p.dimension)
	}
	return nil
}

func (p *HashingProvider) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, p.dimension)
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	for _, token := range tokens {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % uint64(p.dimension))
		// One hash bit decides the sign so colliding tokens tend to cancel
		// rather than pile up
		sign := float32(1)
		if sum&(1<<63) != 0 {
			sign = -1
		}
		vec[bucket] += sign
	}

	normalize(vec)
	return vec, nil
}

func (p *HashingProvider) Dimension() int {
	return p.dimension
}

func (p *HashingProvider) Name() string {
	return fmt.Sprintf("feature-hashing-%d", p.dimension)
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
