package ports

import "github.com/MarcoAyalaT/Vicente/internal/domain"

// DocumentStore persists analysis documents.
type DocumentStore interface {
	Save(path string, a *domain.Analysis) error
	Load(path string) (*domain.Analysis, error)
}
