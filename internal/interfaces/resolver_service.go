package interfaces

import (
	"context"

	"github.com/ternarybob/fiscus/internal/models"
)

// ResolverService reconciles multi-source extractions of financial
// variables into one trusted value per variable key.
type ResolverService interface {
	// Resolve merges the candidates for a single variable. Callers only
	// invoke this with at least one candidate.
	Resolve(candidates []models.ExtractedVariable) float64

	// Combine groups per-source extraction maps into per-variable
	// candidate lists, stamping source index and type
	Combine(sources []map[string]models.SourceValue) map[string][]models.ExtractedVariable

	// ResolveAll resolves every variable key in parallel and returns the
	// resolved set, values rounded to 2 decimal places
	ResolveAll(ctx context.Context, combined map[string][]models.ExtractedVariable) (map[string]float64, error)
}
