package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) ListDocuments(limit int) ([]*models.Document, error) {
	if limit <= 0 {
		limit = 100
	}

	var docs []models.Document
	if err := s.db.Store().Find(&docs, (&badgerhold.Query{}).SortBy("CreatedAt").Limit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *DocumentStorage) DeleteDocument(id string) error {
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) DeleteAllDocuments() error {
	if err := s.db.Store().DeleteMatching(&models.Document{}, &badgerhold.Query{}); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	s.logger.Info().Msg("Deleted all documents")
	return nil
}

func (s *DocumentStorage) CountDocuments() (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, &badgerhold.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) GetStats() (*models.DocumentStats, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, &badgerhold.Query{}); err != nil {
		return nil, fmt.Errorf("failed to load documents for stats: %w", err)
	}

	stats := &models.DocumentStats{TotalDocuments: len(docs)}
	totalSize := 0
	for _, doc := range docs {
		stats.TotalChunks += doc.ChunkCount
		totalSize += len(doc.Content)
		if doc.UpdatedAt.After(stats.LastUpdated) {
			stats.LastUpdated = doc.UpdatedAt
		}
	}
	if len(docs) > 0 {
		stats.AverageContentSize = totalSize / len(docs)
	}
	return stats, nil
}
