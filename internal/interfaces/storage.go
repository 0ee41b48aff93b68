package interfaces

import (
	"github.com/ternarybob/fiscus/internal/models"
)

// DocumentStorage persists raw ingested documents
type DocumentStorage interface {
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	ListDocuments(limit int) ([]*models.Document, error)
	DeleteDocument(id string) error
	DeleteAllDocuments() error
	CountDocuments() (int, error)
	GetStats() (*models.DocumentStats, error)
}

// VariableStorage persists resolved financial variables
type VariableStorage interface {
	SaveResolvedVariable(v *models.ResolvedVariable) error
	SaveResolvedVariables(vars map[string]float64) error
	GetResolvedVariable(key string) (*models.ResolvedVariable, error)
	GetAllResolvedVariables() (map[string]float64, error)
	DeleteAllVariables() error
}

// StorageManager owns the database connection and storage facades
type StorageManager interface {
	DocumentStorage() DocumentStorage
	VariableStorage() VariableStorage
	Close() error
}
