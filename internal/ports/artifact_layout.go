package ports

import "github.com/MarcoAyalaT/Vicente/internal/domain"

// ArtifactLayout maps a sweep item to its files.
type ArtifactLayout interface {
	ItemDir(it domain.SweepItem) string
	GeometryPath(it domain.SweepItem) string
	DocumentPath(it domain.SweepItem) string
	MeshPath(it domain.SweepItem) string
	MesherScriptPath(it domain.SweepItem) string
	SolverDir(it domain.SweepItem) string
	Exists(path string) bool
}
