package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// MapConfig applies the parsed YAML on top of domain.DefaultConfig.
func MapConfig(path string, y YAMLConfig) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if y.Config.UseExistingFiles != nil {
		cfg.Run.UseExistingFiles = *y.Config.UseExistingFiles
	}
	if y.Config.UseExistingMesh != nil {
		cfg.Run.UseExistingMesh = *y.Config.UseExistingMesh
	}
	if y.Config.RunFirstOnly != nil {
		cfg.Run.RunFirstOnly = *y.Config.RunFirstOnly
	}
	if y.Config.SaveDocument != nil {
		cfg.Run.SaveDocument = *y.Config.SaveDocument
	}

	var err error
	if cfg.Irradiated, err = mapSelectors(path, "FACE_IRRADIATED", y.FaceIrradiated); err != nil {
		return domain.Config{}, err
	}
	if cfg.Fixed, err = mapSelectors(path, "FACE_CONSTRAINT_FIXED", y.FaceConstraintFixed); err != nil {
		return domain.Config{}, err
	}

	if y.Temperature == nil || y.Temperature.AmbientTemp == nil {
		return domain.Config{}, invalidField(path, "TEMPERATURE.ambientTemp", "ambient temperature is required")
	}
	cfg.Temperature.AmbientTemp = *y.Temperature.AmbientTemp

	if y.HeatFlux == nil || y.HeatFlux.SolarHeatFlux == nil {
		return domain.Config{}, invalidField(path, "HEAT_FLUX.solarHeatFlux", "heat flux is required")
	}
	cfg.HeatFlux.SolarHeatFlux = *y.HeatFlux.SolarHeatFlux

	if y.Time == nil || y.Time.TimeEnd == nil {
		return domain.Config{}, invalidField(path, "TIME.timeEnd", "end time is required")
	}
	if y.Time.TimeStep == nil {
		return domain.Config{}, invalidField(path, "TIME.timeStep", "time step is required")
	}
	cfg.Time = domain.TimeConfig{TimeEnd: *y.Time.TimeEnd, TimeStep: *y.Time.TimeStep}

	if y.Mesh.CharacteristicLengthMin != nil {
		cfg.Mesh.CharacteristicLengthMin = *y.Mesh.CharacteristicLengthMin
	}
	if y.Mesh.CharacteristicLengthMax != nil {
		cfg.Mesh.CharacteristicLengthMax = *y.Mesh.CharacteristicLengthMax
	}
	if y.Mesh.ElementOrder != nil {
		cfg.Mesh.ElementOrder = *y.Mesh.ElementOrder
	}

	if len(y.Sweep.Bases) > 0 {
		cfg.Sweep.Bases = cfg.Sweep.Bases[:0]
		for i, b := range y.Sweep.Bases {
			sh, err := domain.ParseShape(b)
			if err != nil {
				return domain.Config{}, invalidField(path, fmt.Sprintf("SWEEP.bases[%d]", i), err.Error())
			}
			cfg.Sweep.Bases = append(cfg.Sweep.Bases, sh)
		}
	}
	if len(y.Sweep.Widths) > 0 {
		cfg.Sweep.Widths = append([]int(nil), y.Sweep.Widths...)
	}

	cfg.Material = mapMaterial(cfg.Material, y.Material)

	if s := strings.TrimSpace(y.Paths.FilesDir); s != "" {
		cfg.Paths.FilesDir = s
	}
	if s := strings.TrimSpace(y.Paths.RunsDir); s != "" {
		cfg.Paths.RunsDir = s
	}

	if s := strings.TrimSpace(y.Tools.Gmsh); s != "" {
		cfg.Tools.Gmsh = s
	}
	if s := strings.TrimSpace(y.Tools.CCX); s != "" {
		cfg.Tools.CCX = s
	}
	if y.Tools.Threads != nil {
		if *y.Tools.Threads < 1 {
			return domain.Config{}, invalidField(path, "TOOLS.threads", "must be >= 1")
		}
		cfg.Tools.Threads = *y.Tools.Threads
	}
	if cfg.Tools.MeshTimeout, err = parseTimeout(path, "TOOLS.meshTimeout", y.Tools.MeshTimeout, cfg.Tools.MeshTimeout); err != nil {
		return domain.Config{}, err
	}
	if cfg.Tools.SolverTimeout, err = parseTimeout(path, "TOOLS.solverTimeout", y.Tools.SolverTimeout, cfg.Tools.SolverTimeout); err != nil {
		return domain.Config{}, err
	}

	return cfg, nil
}

func mapSelectors(path, group string, in map[string]YAMLFaceSelector) (domain.FaceSelectors, error) {
	out := domain.FaceSelectors{}
	for k, v := range in {
		sh, err := domain.ParseShape(k)
		if err != nil {
			return nil, invalidField(path, group+"."+k, err.Error())
		}
		sel := make(domain.FaceSelector, 0, len(v))
		for _, f := range v {
			ref := domain.FaceRef(f)
			if _, err := ref.Index(); err != nil {
				return nil, invalidField(path, group+"."+k, err.Error())
			}
			sel = append(sel, ref)
		}
		out[sh] = sel
	}
	return out, nil
}

func mapMaterial(base domain.Material, y YAMLMaterial) domain.Material {
	set := func(dst *string, v string) {
		if s := strings.TrimSpace(v); s != "" {
			*dst = s
		}
	}
	set(&base.Name, y.Name)
	set(&base.YoungsModulus, y.YoungsModulus)
	set(&base.PoissonRatio, y.PoissonRatio)
	set(&base.Density, y.Density)
	set(&base.ThermalConductivity, y.ThermalConductivity)
	set(&base.ThermalExpansionCoefficient, y.ThermalExpansionCoefficient)
	set(&base.SpecificHeat, y.SpecificHeat)
	return base
}

func parseTimeout(path, field, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, invalidField(path, field, err.Error())
	}
	if d < 0 {
		return 0, invalidField(path, field, "must not be negative")
	}
	return d, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
