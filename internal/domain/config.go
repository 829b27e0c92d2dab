package domain

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full thermosweep configuration loaded from configThermo.yaml.
type Config struct {
	Run         RunFlags
	Irradiated  FaceSelectors
	Fixed       FaceSelectors
	Temperature TemperatureConfig
	HeatFlux    HeatFluxConfig
	Mesh        MeshConfig
	Time        TimeConfig
	Sweep       Sweep
	Material    Material
	Paths       PathsConfig
	Tools       ToolsConfig
}

// RunFlags is the CONFIG group.
type RunFlags struct {
	UseExistingFiles bool
	UseExistingMesh  bool
	RunFirstOnly     bool
	SaveDocument     bool
}

// TemperatureConfig holds temperatures in K.
type TemperatureConfig struct {
	AmbientTemp float64
}

// HeatFluxConfig holds the surface heat flux in W/m^2.
type HeatFluxConfig struct {
	SolarHeatFlux float64
}

// MeshConfig bounds the mesher; lengths are in mm.
type MeshConfig struct {
	CharacteristicLengthMin float64
	CharacteristicLengthMax float64
	ElementOrder            int
}

// TimeConfig is the transient time stepping in s. The step length is fixed:
// initial, minimum and maximum step are all TimeStep.
type TimeConfig struct {
	TimeEnd  float64
	TimeStep float64
}

type PathsConfig struct {
	FilesDir string
	RunsDir  string
}

// ToolsConfig locates the external mesher and solver.
type ToolsConfig struct {
	Gmsh          string
	CCX           string
	Threads       int
	MeshTimeout   time.Duration
	SolverTimeout time.Duration
}

// DefaultWidths is the width sweep in mm.
var DefaultWidths = []int{3000, 3500, 4000, 4500, 5000, 5500}

// DefaultConfig provides defaults for everything configThermo.yaml may omit.
func DefaultConfig() Config {
	return Config{
		Run: RunFlags{
			UseExistingFiles: false,
			UseExistingMesh:  false,
			RunFirstOnly:     false,
			SaveDocument:     true,
		},
		Irradiated:  FaceSelectors{},
		Fixed:       FaceSelectors{},
		Temperature: TemperatureConfig{AmbientTemp: 300},
		Mesh: MeshConfig{
			CharacteristicLengthMin: 0,
			CharacteristicLengthMax: 1e22,
			ElementOrder:            2,
		},
		Sweep: Sweep{
			Bases:  []Shape{ShapeHex},
			Widths: append([]int(nil), DefaultWidths...),
		},
		Material: StainlessSteel(),
		Paths: PathsConfig{
			FilesDir: "files",
			RunsDir:  "runs",
		},
		Tools: ToolsConfig{
			Gmsh:          "gmsh",
			CCX:           "ccx",
			Threads:       1,
			MeshTimeout:   30 * time.Minute,
			SolverTimeout: 6 * time.Hour,
		},
	}
}

// Validate checks cross-field rules that a YAML mapper cannot express per
// field. It returns the first violation as an invalid_config error.
func (c Config) Validate() error {
	if len(c.Sweep.Bases) == 0 {
		return invalidConfig("SWEEP.bases", "at least one base shape is required")
	}
	if len(c.Sweep.Widths) == 0 {
		return invalidConfig("SWEEP.widths", "at least one width is required")
	}
	for i, w := range c.Sweep.Widths {
		if w <= 0 {
			return invalidConfig(fmt.Sprintf("SWEEP.widths[%d]", i), "width must be > 0")
		}
	}

	for _, b := range c.Sweep.Bases {
		if err := validateSelector(c.Irradiated, "FACE_IRRADIATED", b); err != nil {
			return err
		}
		if err := validateSelector(c.Fixed, "FACE_CONSTRAINT_FIXED", b); err != nil {
			return err
		}
	}

	if c.Temperature.AmbientTemp <= 0 {
		return invalidConfig("TEMPERATURE.ambientTemp", "must be > 0 K")
	}
	if c.Mesh.CharacteristicLengthMin < 0 {
		return invalidConfig("MESH.CharacteristicLengthMin", "must be >= 0")
	}
	if c.Mesh.CharacteristicLengthMax <= 0 {
		return invalidConfig("MESH.CharacteristicLengthMax", "must be > 0")
	}
	if c.Mesh.CharacteristicLengthMin > c.Mesh.CharacteristicLengthMax {
		return invalidConfig("MESH.CharacteristicLengthMin", "must not exceed CharacteristicLengthMax")
	}
	if c.Mesh.ElementOrder != 1 && c.Mesh.ElementOrder != 2 {
		return invalidConfig("MESH.ElementOrder", "must be 1 or 2")
	}
	if c.Time.TimeEnd <= 0 {
		return invalidConfig("TIME.timeEnd", "must be > 0")
	}
	if c.Time.TimeStep <= 0 {
		return invalidConfig("TIME.timeStep", "must be > 0")
	}
	if c.Time.TimeStep > c.Time.TimeEnd {
		return invalidConfig("TIME.timeStep", "must not exceed timeEnd")
	}
	if _, err := c.Material.SolverValues(); err != nil {
		return invalidConfig("MATERIAL", err.Error())
	}
	if strings.TrimSpace(c.Tools.Gmsh) == "" {
		return invalidConfig("TOOLS.gmsh", "mesher binary is required")
	}
	if strings.TrimSpace(c.Tools.CCX) == "" {
		return invalidConfig("TOOLS.ccx", "solver binary is required")
	}
	return nil
}

func validateSelector(m FaceSelectors, group string, b Shape) error {
	sel, ok := m[b]
	if !ok || len(sel) == 0 {
		return invalidConfig(group+"."+string(b), "face selector is required for every swept base")
	}
	if _, err := sel.Indices(); err != nil {
		return invalidConfig(group+"."+string(b), err.Error())
	}
	return nil
}

func invalidConfig(field, msg string) error {
	return &OpError{
		Op:   "config.validate",
		Kind: KindInvalidConfig,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, ErrInvalidConfig),
	}
}
