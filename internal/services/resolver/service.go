package resolver

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
)

// decisiveGap is the absolute confidence margin above which the top
// candidate is trusted exclusively instead of blending sources
const decisiveGap = 0.2

// defaultConfidence is assumed when an extractor does not report one
const defaultConfidence = 0.5

// Service implements ResolverService. Resolution runs independently per
// financial-variable key; there is no cross-variable consistency
// enforcement at this layer.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new conflict resolver
func NewService(logger arbor.ILogger) interfaces.ResolverService {
	return &Service{logger: logger}
}

// Resolve merges candidate values for one variable. A decisive confidence
// gap signals one source is clearly more reliable (a table-sourced figure
// vs a regex-on-free-text guess); comparably trusted sources are blended
// by confidence-weighted mean to smooth measurement noise.
func (s *Service) Resolve(candidates []models.ExtractedVariable) float64 {
	if len(candidates) == 1 {
		return candidates[0].Value
	}

	sorted := append([]models.ExtractedVariable(nil), candidates...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Confidence > sorted[b].Confidence
	})

	if sorted[0].Confidence-sorted[1].Confidence > decisiveGap {
		return sorted[0].Value
	}

	var totalWeight, weightedSum float64
	for _, c := range candidates {
		totalWeight += c.Confidence
		weightedSum += c.Value * c.Confidence
	}
	if totalWeight == 0 {
		return sorted[0].Value
	}
	return weightedSum / totalWeight
}

// Combine groups per-source extraction maps into per-variable candidate
// lists, stamping each candidate with its source index and type
func (s *Service) Combine(sources []map[string]models.SourceValue) map[string][]models.ExtractedVariable {
	combined := make(map[string][]models.ExtractedVariable)

	for sourceIdx, source := range sources {
		for varKey, v := range source {
			confidence := v.Confidence
			if confidence == 0 {
				confidence = defaultConfidence
			}
			sourceType := v.Source
			if sourceType == "" {
				sourceType = models.SourceTypeUnknown
			}
			combined[varKey] = append(combined[varKey], models.ExtractedVariable{
				Value:       v.Value,
				Confidence:  confidence,
				SourceIndex: sourceIdx,
				SourceType:  sourceType,
			})
		}
	}

	return combined
}

// ResolveAll resolves every variable key in parallel. Keys are independent,
// so resolution fans out across goroutines with results joined before
// returning. Values are rounded to 2 decimal places.
func (s *Service) ResolveAll(ctx context.Context, combined map[string][]models.ExtractedVariable) (map[string]float64, error) {
	resolved := make(map[string]float64, len(combined))
	if len(combined) == 0 {
		return resolved, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for key, candidates := range combined {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}

		wg.Add(1)
		go func(key string, candidates []models.ExtractedVariable) {
			defer wg.Done()
			value := math.Round(s.Resolve(candidates)*100) / 100

			mu.Lock()
			resolved[key] = value
			mu.Unlock()
		}(key, candidates)
	}
	wg.Wait()

	s.logger.Info().
		Int("variables", len(resolved)).
		Msg("Resolved financial variables")

	return resolved, nil
}
