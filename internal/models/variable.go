package models

import "time"

// SourceType identifies where an extracted value came from
type SourceType string

const (
	SourceTypeTable   SourceType = "table"
	SourceTypeText    SourceType = "text"
	SourceTypeUnknown SourceType = "unknown"
)

// ExtractedVariable is one candidate value for a financial variable,
// produced once per (variable, source) during extraction. Read-only input
// to conflict resolution.
type ExtractedVariable struct {
	Value       float64    `json:"value"`
	Confidence  float64    `json:"confidence"` // in [0, 1]
	SourceIndex int        `json:"source_index"`
	SourceType  SourceType `json:"source_type"`
}

// SourceValue is a raw per-source extraction before combination.
// Confidence defaults to 0.5 when the extractor does not report one.
type SourceValue struct {
	Value      float64    `json:"value"`
	Confidence float64    `json:"confidence"`
	Source     SourceType `json:"source"`
}

// ResolvedVariable is the single reconciled value for a financial concept
type ResolvedVariable struct {
	VariableKey string    `json:"variable_key" badgerhold:"key"`
	Value       float64   `json:"value"`
	Candidates  int       `json:"candidates"`
	ResolvedAt  time.Time `json:"resolved_at"`
}
