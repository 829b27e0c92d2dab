package ports

import (
	"context"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// Mesher generates a mesh for an analysis and writes it to outPath.
// A failure reported by the meshing tool itself is returned as a mesh error
// (domain.IsMeshError); any other error is an infrastructure failure.
type Mesher interface {
	Mesh(ctx context.Context, a *domain.Analysis, scriptPath, outPath string) error
}

// MeshReader loads a mesh file.
type MeshReader interface {
	ReadMesh(path string) (*domain.Mesh, error)
}
