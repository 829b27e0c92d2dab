package domain

import "fmt"

// Material is a named solid material card. Properties are kept as quantity
// strings, the way they are written in configuration, and converted to
// solver units on demand.
type Material struct {
	Name                        string `json:"name"`
	YoungsModulus               string `json:"youngs_modulus"`
	PoissonRatio                string `json:"poisson_ratio"`
	Density                     string `json:"density"`
	ThermalConductivity         string `json:"thermal_conductivity"`
	ThermalExpansionCoefficient string `json:"thermal_expansion_coefficient"`
	SpecificHeat                string `json:"specific_heat"`
}

// StainlessSteel is the default material of the analysis.
func StainlessSteel() Material {
	return Material{
		Name:                        "Steel-Stainless",
		YoungsModulus:               "200 GPa",
		PoissonRatio:                "0.29",
		Density:                     "8000 kg/m^3",
		ThermalConductivity:         "16.200 W/m/K",
		ThermalExpansionCoefficient: "17.300 µm/m/K",
		SpecificHeat:                "591.00 J/kg/K",
	}
}

// MaterialValues holds a material converted into solver units.
type MaterialValues struct {
	YoungsModulus       float64
	PoissonRatio        float64
	Density             float64
	ThermalConductivity float64
	ThermalExpansion    float64
	SpecificHeat        float64
}

// SolverValues converts every property; the first bad property is reported.
func (m Material) SolverValues() (MaterialValues, error) {
	var out MaterialValues
	fields := []struct {
		name string
		in   string
		dim  Dimension
		dst  *float64
	}{
		{"YoungsModulus", m.YoungsModulus, DimStress, &out.YoungsModulus},
		{"PoissonRatio", m.PoissonRatio, DimDimensionless, &out.PoissonRatio},
		{"Density", m.Density, DimDensity, &out.Density},
		{"ThermalConductivity", m.ThermalConductivity, DimConductivity, &out.ThermalConductivity},
		{"ThermalExpansionCoefficient", m.ThermalExpansionCoefficient, DimExpansion, &out.ThermalExpansion},
		{"SpecificHeat", m.SpecificHeat, DimSpecificHeat, &out.SpecificHeat},
	}
	for _, f := range fields {
		v, err := SolverValue(f.in, f.dim)
		if err != nil {
			return MaterialValues{}, fmt.Errorf("material %s: %s: %w", m.Name, f.name, err)
		}
		*f.dst = v
	}
	return out, nil
}
