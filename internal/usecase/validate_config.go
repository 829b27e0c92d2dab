package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

// ValidationReport is the outcome of a dry check of a sweep configuration.
type ValidationReport struct {
	Config   domain.Config
	Plan     []domain.ItemPlan
	Tools    map[string]string
	Problems []string
}

// OK reports whether the sweep can be run as configured.
func (r ValidationReport) OK() bool {
	return len(r.Problems) == 0
}

// ValidateConfig loads a configuration and checks what a run needs: the
// geometry of every item that will not be skipped and the external tools.
type ValidateConfig struct {
	configs ports.ConfigLoader
	tools   ports.ToolLocator
	layout  func(domain.Config) ports.ArtifactLayout
}

// NewValidateConfig takes a layout factory because the layout depends on the
// loaded configuration's paths.
func NewValidateConfig(cl ports.ConfigLoader, tl ports.ToolLocator, layout func(domain.Config) ports.ArtifactLayout) *ValidateConfig {
	return &ValidateConfig{configs: cl, tools: tl, layout: layout}
}

// Execute returns the report and, when problems were found, an
// invalid_config error summarizing them. Load errors are returned as is.
func (uc *ValidateConfig) Execute(ctx context.Context, configPath string) (ValidationReport, error) {
	cfg, err := uc.configs.LoadConfig(configPath)
	if err != nil {
		return ValidationReport{}, err
	}

	rep := ValidationReport{
		Config: cfg,
		Plan:   NewPlanSweep(uc.layout(cfg)).Execute(cfg),
		Tools:  map[string]string{},
	}

	for _, p := range rep.Plan {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if !p.WillSkip && !p.GeometryExists {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: geometry not found at %s", p.Name, p.GeometryPath))
		}
	}

	for _, t := range []struct{ key, bin string }{
		{"gmsh", cfg.Tools.Gmsh},
		{"ccx", cfg.Tools.CCX},
	} {
		path, err := uc.tools.LookPath(t.bin)
		if err != nil {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: %q not found in PATH", t.key, t.bin))
			continue
		}
		rep.Tools[t.key] = path
	}

	if rep.OK() {
		return rep, nil
	}
	return rep, &domain.OpError{
		Op:   "sweep.validate",
		Kind: domain.KindInvalidConfig,
		Path: configPath,
		Err:  fmt.Errorf("%s: %w", strings.Join(rep.Problems, "; "), domain.ErrInvalidConfig),
	}
}
