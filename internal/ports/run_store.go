package ports

import "github.com/MarcoAyalaT/Vicente/internal/domain"

// RunStore persists sweep run artifacts.
type RunStore interface {
	SaveRun(run domain.SweepRun) (id string, err error)
	ListRuns() ([]domain.RunRef, error)
	LoadRun(id string) (domain.SweepRun, []byte, error)
}
