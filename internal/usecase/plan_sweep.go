package usecase

import (
	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

// PlanSweep reports, per item, which cached artifacts exist and what a run
// would do with them. Nothing is executed.
type PlanSweep struct {
	layout ports.ArtifactLayout
}

func NewPlanSweep(layout ports.ArtifactLayout) *PlanSweep {
	return &PlanSweep{layout: layout}
}

func (uc *PlanSweep) Execute(cfg domain.Config) []domain.ItemPlan {
	items := cfg.Sweep.Items()
	out := make([]domain.ItemPlan, 0, len(items))
	for _, it := range items {
		p := domain.ItemPlan{
			Item:         it,
			Name:         it.Name(),
			GeometryPath: uc.layout.GeometryPath(it),
		}
		p.GeometryExists = uc.layout.Exists(p.GeometryPath)
		p.DocumentExists = uc.layout.Exists(uc.layout.DocumentPath(it))
		p.MeshExists = uc.layout.Exists(uc.layout.MeshPath(it))
		p.WillSkip = cfg.Run.UseExistingFiles && p.DocumentExists
		p.WillReuseMesh = !p.WillSkip && cfg.Run.UseExistingMesh && p.MeshExists
		out = append(out, p)
	}
	return out
}
