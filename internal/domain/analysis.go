package domain

import (
	"errors"
	"fmt"
	"time"
)

// AnalysisType selects the solver procedure.
type AnalysisType string

const AnalysisThermomech AnalysisType = "thermomech"

// HeatFluxType is the way a surface heat load is applied.
type HeatFluxType string

const HeatFluxDFlux HeatFluxType = "DFlux"

// Part is the geometry container of an analysis.
type Part struct {
	Name         string `json:"name"`
	GeometryPath string `json:"geometry_path"`
}

// FixedConstraint clamps every displacement of the referenced faces.
type FixedConstraint struct {
	Faces []string `json:"faces"`
}

// InitialTemperature is the uniform temperature at t=0, in K.
type InitialTemperature struct {
	Temperature float64 `json:"temperature"`
}

// HeatFluxConstraint is a distributed flux (W/m^2) on the referenced faces.
type HeatFluxConstraint struct {
	Faces []string     `json:"faces"`
	Type  HeatFluxType `json:"type"`
	DFlux float64      `json:"dflux"`
}

// SolverSettings configure the external solver run.
type SolverSettings struct {
	AnalysisType                        AnalysisType `json:"analysis_type"`
	ThermoMechSteadyState               bool         `json:"thermomech_steady_state"`
	IterationsUserDefinedTimeStepLength bool         `json:"iterations_user_defined_time_step_length"`
	TimeEnd                             float64      `json:"time_end"`
	TimeInitialStep                     float64      `json:"time_initial_step"`
	TimeMaximumStep                     float64      `json:"time_maximum_step"`
	TimeMinimumStep                     float64      `json:"time_minimum_step"`
}

// MeshSettings configure the mesher and record which mesh the analysis uses.
type MeshSettings struct {
	CharacteristicLengthMin float64 `json:"characteristic_length_min"`
	CharacteristicLengthMax float64 `json:"characteristic_length_max"`
	ElementOrder            int     `json:"element_order"`
	MeshPath                string  `json:"mesh_path,omitempty"`
	Reused                  bool    `json:"reused,omitempty"`
}

// Analysis is the per-item document: geometry, material, constraints, solver
// and mesh objects. One Analysis is open per sweep item and is closed before
// the next item starts.
type Analysis struct {
	Name      string    `json:"name"`
	Item      SweepItem `json:"item"`
	CreatedAt time.Time `json:"created_at"`

	Part               Part               `json:"part"`
	Material           Material           `json:"material"`
	Fixed              FixedConstraint    `json:"fixed"`
	InitialTemperature InitialTemperature `json:"initial_temperature"`
	HeatFlux           HeatFluxConstraint `json:"heat_flux"`
	Solver             SolverSettings     `json:"solver"`
	Mesh               MeshSettings       `json:"mesh"`

	closed bool
}

// ErrDocumentClosed is returned when a closed analysis is modified.
var ErrDocumentClosed = errors.New("analysis document is closed")

// NewAnalysis assembles the analysis document of one sweep item from the
// configuration. geometryPath is the item's geometry input file.
func NewAnalysis(it SweepItem, cfg Config, geometryPath string, now time.Time) (*Analysis, error) {
	top, ok := cfg.Irradiated.For(it)
	if !ok {
		return nil, &OpError{
			Op:   "analysis.new",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("no FACE_IRRADIATED selector for %s: %w", it.Name(), ErrInvalidConfig),
		}
	}
	bottom, ok := cfg.Fixed.For(it)
	if !ok {
		return nil, &OpError{
			Op:   "analysis.new",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("no FACE_CONSTRAINT_FIXED selector for %s: %w", it.Name(), ErrInvalidConfig),
		}
	}

	return &Analysis{
		Name:      it.Name(),
		Item:      it,
		CreatedAt: now.UTC(),
		Part: Part{
			Name:         "Container",
			GeometryPath: geometryPath,
		},
		Material: cfg.Material,
		Fixed: FixedConstraint{
			Faces: bottom.Strings(),
		},
		InitialTemperature: InitialTemperature{
			Temperature: cfg.Temperature.AmbientTemp,
		},
		HeatFlux: HeatFluxConstraint{
			Faces: top.Strings(),
			Type:  HeatFluxDFlux,
			DFlux: cfg.HeatFlux.SolarHeatFlux,
		},
		Solver: SolverSettings{
			AnalysisType:                        AnalysisThermomech,
			ThermoMechSteadyState:               false,
			IterationsUserDefinedTimeStepLength: true,
			TimeEnd:                             cfg.Time.TimeEnd,
			TimeInitialStep:                     cfg.Time.TimeStep,
			TimeMaximumStep:                     cfg.Time.TimeStep,
			TimeMinimumStep:                     cfg.Time.TimeStep,
		},
		Mesh: MeshSettings{
			CharacteristicLengthMin: cfg.Mesh.CharacteristicLengthMin,
			CharacteristicLengthMax: cfg.Mesh.CharacteristicLengthMax,
			ElementOrder:            cfg.Mesh.ElementOrder,
		},
	}, nil
}

// AttachMesh records the mesh the analysis is solved on.
func (a *Analysis) AttachMesh(path string, reused bool) error {
	if a.closed {
		return ErrDocumentClosed
	}
	a.Mesh.MeshPath = path
	a.Mesh.Reused = reused
	return nil
}

// Close releases the document. Further modification fails.
func (a *Analysis) Close() {
	a.closed = true
}

// Closed reports whether Close was called.
func (a *Analysis) Closed() bool {
	return a.closed
}

// FaceIndices returns the 1-based face numbers of a constraint's references.
func FaceIndices(faces []string) ([]int, error) {
	sel := make(FaceSelector, len(faces))
	for i, f := range faces {
		sel[i] = FaceRef(f)
	}
	return sel.Indices()
}
