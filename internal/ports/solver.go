package ports

import (
	"context"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// Solver runs the external FEM solver for an analysis whose mesh is attached.
type Solver interface {
	// Purge removes results of a previous solve in workDir.
	Purge(workDir string) error
	// CheckPrerequisites returns a one-line report; an error means the
	// analysis cannot be solved.
	CheckPrerequisites(a *domain.Analysis, mesh *domain.Mesh) (string, error)
	Solve(ctx context.Context, a *domain.Analysis, mesh *domain.Mesh, workDir string) (domain.ResultSummary, error)
}
