package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension is the physical dimension a quantity string is expected to have.
type Dimension string

const (
	DimDimensionless Dimension = "dimensionless"
	DimStress        Dimension = "stress"
	DimDensity       Dimension = "density"
	DimConductivity  Dimension = "thermal_conductivity"
	DimExpansion     Dimension = "thermal_expansion"
	DimSpecificHeat  Dimension = "specific_heat"
	DimHeatFlux      Dimension = "heat_flux"
	DimLength        Dimension = "length"
	DimTemperature   Dimension = "temperature"
)

// Solver values use the mm, t (tonne), s, K system, the one the geometry is
// modelled in. Each factor converts one unit into that system.
var unitFactors = map[Dimension]map[string]float64{
	DimDimensionless: {"": 1},
	DimStress: {
		"Pa":  1e-6,
		"kPa": 1e-3,
		"MPa": 1,
		"GPa": 1e3,
	},
	DimDensity: {
		"kg/m^3":  1e-12,
		"g/cm^3":  1e-9,
		"t/mm^3":  1,
		"kg/mm^3": 1e-3,
	},
	DimConductivity: {
		"W/m/K":  1,
		"W/mm/K": 1e3,
	},
	DimExpansion: {
		"µm/m/K":  1e-6,
		"um/m/K":  1e-6,
		"mm/mm/K": 1,
		"m/m/K":   1,
		"1/K":     1,
	},
	DimSpecificHeat: {
		"J/kg/K": 1e6,
		"J/g/K":  1e9,
	},
	DimHeatFlux: {
		"W/m^2":  1e-3,
		"W/mm^2": 1e3,
		"kW/m^2": 1,
	},
	DimLength: {
		"mm": 1,
		"m":  1e3,
	},
	DimTemperature: {
		"K": 1,
	},
}

// Quantity is a value with a unit as written in configuration, e.g.
// "16.200 W/m/K".
type Quantity struct {
	Value float64
	Unit  string
}

func (q Quantity) String() string {
	if q.Unit == "" {
		return strconv.FormatFloat(q.Value, 'g', -1, 64)
	}
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit
}

// ParseQuantity splits "<number> [unit]".
func ParseQuantity(s string) (Quantity, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return Quantity{}, fmt.Errorf("empty quantity")
	}

	numEnd := len(in)
	if i := strings.IndexAny(in, " \t"); i >= 0 {
		numEnd = i
	}
	v, err := strconv.ParseFloat(in[:numEnd], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("quantity %q: invalid number: %w", s, err)
	}

	unit := normalizeUnit(in[numEnd:])
	return Quantity{Value: v, Unit: unit}, nil
}

// In converts the quantity into the solver unit system for the given
// dimension.
func (q Quantity) In(dim Dimension) (float64, error) {
	table, ok := unitFactors[dim]
	if !ok {
		return 0, fmt.Errorf("unknown dimension %q", dim)
	}
	f, ok := table[q.Unit]
	if !ok {
		return 0, fmt.Errorf("unit %q is not a %s unit", q.Unit, dim)
	}
	return q.Value * f, nil
}

// SolverValue parses s and converts it in one step.
func SolverValue(s string, dim Dimension) (float64, error) {
	q, err := ParseQuantity(s)
	if err != nil {
		return 0, err
	}
	return q.In(dim)
}

func normalizeUnit(u string) string {
	u = strings.Join(strings.Fields(u), "")
	u = strings.ReplaceAll(u, "³", "^3")
	u = strings.ReplaceAll(u, "²", "^2")
	u = strings.ReplaceAll(u, "μ", "µ")
	return u
}
