package vectorindex

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/fiscus/internal/models"
)

// indexArtifact is the on-disk form of the similarity structure
// (<base>.index, gob-encoded). Its companion <base>.chunks holds the entry
// list as JSON; the two are only meaningful together.
type indexArtifact struct {
	Dimension int
	Vectors   [][]float32
}

// Save writes the index structure and entry list as companion artifacts
// under the shared base path
func (idx *Index) Save(basePath string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(basePath), 0755); err != nil {
		return fmt.Errorf("failed to create knowledge base directory: %w", err)
	}

	indexPath := basePath + ".index"
	f, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("failed to create index artifact: %w", err)
	}
	defer f.Close()

	artifact := indexArtifact{
		Dimension: idx.dimension,
		Vectors:   idx.vectors,
	}
	if err := gob.NewEncoder(f).Encode(&artifact); err != nil {
		return fmt.Errorf("failed to encode index artifact: %w", err)
	}

	chunksPath := basePath + ".chunks"
	data, err := json.Marshal(idx.entries)
	if err != nil {
		return fmt.Errorf("failed to encode chunk entries: %w", err)
	}
	if err := os.WriteFile(chunksPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write chunks artifact: %w", err)
	}

	idx.logger.Info().
		Str("base_path", basePath).
		Int("chunks", len(idx.entries)).
		Msg("Saved vector index")

	return nil
}

// Load replaces in-memory state from the companion artifacts. Both files
// are decoded and cross-validated before anything is swapped in, so a
// failed load preserves the prior state.
func (idx *Index) Load(basePath string) error {
	indexPath := basePath + ".index"
	f, err := os.Open(indexPath)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s: %v", ErrCorruptPersistence, indexPath, err)
	}
	defer f.Close()

	var artifact indexArtifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return fmt.Errorf("%w: cannot decode %s: %v", ErrCorruptPersistence, indexPath, err)
	}

	chunksPath := basePath + ".chunks"
	data, err := os.ReadFile(chunksPath)
	if err != nil {
		return fmt.Errorf("%w: cannot read %s: %v", ErrCorruptPersistence, chunksPath, err)
	}

	var entries []models.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: cannot decode %s: %v", ErrCorruptPersistence, chunksPath, err)
	}

	if len(entries) != len(artifact.Vectors) {
		return fmt.Errorf("%w: %d vectors but %d entries", ErrCorruptPersistence,
			len(artifact.Vectors), len(entries))
	}
	for i, vec := range artifact.Vectors {
		if len(vec) != artifact.Dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, artifact declares %d",
				ErrCorruptPersistence, i, len(vec), artifact.Dimension)
		}
	}

	idx.mu.Lock()
	idx.dimension = artifact.Dimension
	idx.vectors = artifact.Vectors
	idx.entries = entries
	idx.mu.Unlock()

	idx.logger.Info().
		Str("base_path", basePath).
		Int("chunks", len(entries)).
		Int("dimension", artifact.Dimension).
		Msg("Loaded vector index")

	return nil
}
