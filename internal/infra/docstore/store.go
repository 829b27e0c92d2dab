package docstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

// JSONStore keeps analysis documents as indented JSON files.
type JSONStore struct{}

func NewJSONStore() *JSONStore {
	return &JSONStore{}
}

var _ ports.DocumentStore = (*JSONStore)(nil)

func (s *JSONStore) Save(path string, a *domain.Analysis) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{
			Op:   "docstore.mkdir",
			Kind: domain.KindExecution,
			Path: filepath.Dir(path),
			Err:  err,
		}
	}

	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return &domain.OpError{
			Op:   "docstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename, so a cached document is never partial.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return &domain.OpError{
			Op:   "docstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "docstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return nil
}

func (s *JSONStore) Load(path string) (*domain.Analysis, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "docstore.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var a domain.Analysis
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, &domain.OpError{
			Op:   "docstore.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return &a, nil
}
