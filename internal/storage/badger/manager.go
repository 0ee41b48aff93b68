package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/common"
	"github.com/ternarybob/fiscus/internal/interfaces"
)

// Manager owns the Badger connection and the storage facades built on it
type Manager struct {
	db        *BadgerDB
	documents interfaces.DocumentStorage
	variables interfaces.VariableStorage
}

// NewManager opens the database and wires the storage facades
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:        db,
		documents: NewDocumentStorage(db, logger),
		variables: NewVariableStorage(db, logger),
	}, nil
}

func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.documents
}

func (m *Manager) VariableStorage() interfaces.VariableStorage {
	return m.variables
}

func (m *Manager) Close() error {
	return m.db.Close()
}
