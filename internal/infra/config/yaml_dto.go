package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLConfig mirrors configThermo.yaml. Group names are upper-case, keys keep
// the spelling of the analysis objects they feed.
type YAMLConfig struct {
	Config              YAMLRunFlags                `yaml:"CONFIG"`
	FaceIrradiated      map[string]YAMLFaceSelector `yaml:"FACE_IRRADIATED"`
	FaceConstraintFixed map[string]YAMLFaceSelector `yaml:"FACE_CONSTRAINT_FIXED"`
	Temperature         *YAMLTemperature            `yaml:"TEMPERATURE"`
	HeatFlux            *YAMLHeatFlux               `yaml:"HEAT_FLUX"`
	Mesh                YAMLMesh                    `yaml:"MESH"`
	Time                *YAMLTime                   `yaml:"TIME"`
	Sweep               YAMLSweep                   `yaml:"SWEEP"`
	Material            YAMLMaterial                `yaml:"MATERIAL"`
	Paths               YAMLPaths                   `yaml:"PATHS"`
	Tools               YAMLTools                   `yaml:"TOOLS"`
}

type YAMLRunFlags struct {
	UseExistingFiles *bool `yaml:"useExistingFiles"`
	UseExistingMesh  *bool `yaml:"useExistingMesh"`
	RunFirstOnly     *bool `yaml:"runFirstOnly"`
	SaveDocument     *bool `yaml:"saveDocument"`
}

type YAMLTemperature struct {
	AmbientTemp *float64 `yaml:"ambientTemp"`
}

type YAMLHeatFlux struct {
	SolarHeatFlux *float64 `yaml:"solarHeatFlux"`
}

type YAMLMesh struct {
	CharacteristicLengthMin *float64 `yaml:"CharacteristicLengthMin"`
	CharacteristicLengthMax *float64 `yaml:"CharacteristicLengthMax"`
	ElementOrder            *int     `yaml:"ElementOrder"`
}

type YAMLTime struct {
	TimeEnd  *float64 `yaml:"timeEnd"`
	TimeStep *float64 `yaml:"timeStep"`
}

type YAMLSweep struct {
	Bases  []string `yaml:"bases"`
	Widths []int    `yaml:"widths"`
}

type YAMLMaterial struct {
	Name                        string `yaml:"Name"`
	YoungsModulus               string `yaml:"YoungsModulus"`
	PoissonRatio                string `yaml:"PoissonRatio"`
	Density                     string `yaml:"Density"`
	ThermalConductivity         string `yaml:"ThermalConductivity"`
	ThermalExpansionCoefficient string `yaml:"ThermalExpansionCoefficient"`
	SpecificHeat                string `yaml:"SpecificHeat"`
}

type YAMLPaths struct {
	FilesDir string `yaml:"filesDir"`
	RunsDir  string `yaml:"runsDir"`
}

type YAMLTools struct {
	Gmsh          string `yaml:"gmsh"`
	CCX           string `yaml:"ccx"`
	Threads       *int   `yaml:"threads"`
	MeshTimeout   string `yaml:"meshTimeout"`
	SolverTimeout string `yaml:"solverTimeout"`
}

// YAMLFaceSelector accepts a single face ("Face12" or 12) or a list of them.
type YAMLFaceSelector []string

func (s *YAMLFaceSelector) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		f, err := faceFromScalar(value)
		if err != nil {
			return err
		}
		*s = YAMLFaceSelector{f}
		return nil

	case yaml.SequenceNode:
		out := make(YAMLFaceSelector, 0, len(value.Content))
		for _, n := range value.Content {
			if n.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: face selector entries must be scalars", n.Line)
			}
			f, err := faceFromScalar(n)
			if err != nil {
				return err
			}
			out = append(out, f)
		}
		*s = out
		return nil

	default:
		return fmt.Errorf("line %d: face selector must be a face name or a list of face names", value.Line)
	}
}

func faceFromScalar(n *yaml.Node) (string, error) {
	v := strings.TrimSpace(n.Value)
	if v == "" {
		return "", fmt.Errorf("line %d: empty face selector", n.Line)
	}
	if i, err := strconv.Atoi(v); err == nil {
		return "Face" + strconv.Itoa(i), nil
	}
	return v, nil
}
