package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// VariableStorage implements the VariableStorage interface for Badger
type VariableStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVariableStorage creates a new VariableStorage instance
func NewVariableStorage(db *BadgerDB, logger arbor.ILogger) interfaces.VariableStorage {
	return &VariableStorage{
		db:     db,
		logger: logger,
	}
}

func (s *VariableStorage) SaveResolvedVariable(v *models.ResolvedVariable) error {
	if v.VariableKey == "" {
		return fmt.Errorf("variable key is required")
	}
	if v.ResolvedAt.IsZero() {
		v.ResolvedAt = time.Now()
	}

	if err := s.db.Store().Upsert(v.VariableKey, v); err != nil {
		return fmt.Errorf("failed to save resolved variable: %w", err)
	}
	return nil
}

// SaveResolvedVariables upserts a full resolved set. Later resolutions of
// the same key overwrite earlier ones.
func (s *VariableStorage) SaveResolvedVariables(vars map[string]float64) error {
	now := time.Now()
	for key, value := range vars {
		v := &models.ResolvedVariable{
			VariableKey: key,
			Value:       value,
			ResolvedAt:  now,
		}
		if err := s.db.Store().Upsert(key, v); err != nil {
			return fmt.Errorf("failed to save resolved variable %s: %w", key, err)
		}
	}

	s.logger.Debug().Int("variables", len(vars)).Msg("Saved resolved variables")
	return nil
}

func (s *VariableStorage) GetResolvedVariable(key string) (*models.ResolvedVariable, error) {
	var v models.ResolvedVariable
	if err := s.db.Store().Get(key, &v); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("resolved variable not found: %s", key)
		}
		return nil, fmt.Errorf("failed to get resolved variable: %w", err)
	}
	return &v, nil
}

func (s *VariableStorage) GetAllResolvedVariables() (map[string]float64, error) {
	var vars []models.ResolvedVariable
	if err := s.db.Store().Find(&vars, &badgerhold.Query{}); err != nil {
		return nil, fmt.Errorf("failed to load resolved variables: %w", err)
	}

	result := make(map[string]float64, len(vars))
	for _, v := range vars {
		result[v.VariableKey] = v.Value
	}
	return result, nil
}

func (s *VariableStorage) DeleteAllVariables() error {
	if err := s.db.Store().DeleteMatching(&models.ResolvedVariable{}, &badgerhold.Query{}); err != nil {
		return fmt.Errorf("failed to delete resolved variables: %w", err)
	}
	s.logger.Info().Msg("Deleted all resolved variables")
	return nil
}
