// Package ccx writes CalculiX input decks and runs the ccx solver.
package ccx

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/infra/inpmesh"
)

// Set names the deck relies on. The mesher writes FIXED and IRRADIATED.
const (
	SetAll        = "NALL"
	SetElements   = "EALL"
	SetFixed      = "FIXED"
	SetIrradiated = "IRRADIATED"

	// degree of freedom of temperature in CalculiX
	dofTemperature = 11
	// data lines of sets and elements carry at most this many entries
	perLine = 8
)

// Deck is the prepared content of one solver input file.
type Deck struct {
	Name     string
	Mesh     *domain.Mesh
	Material domain.MaterialValues
	MatName  string
	Fixed    []int
	Loads    []inpmesh.NodalLoad
	Area     float64

	InitialTemperature float64
	TimeEnd            float64
	TimeStep           float64
}

// BuildDeck resolves material values, constraint sets and nodal heat loads
// of an analysis on a mesh.
func BuildDeck(a *domain.Analysis, m *domain.Mesh) (*Deck, error) {
	mat, err := a.Material.SolverValues()
	if err != nil {
		return nil, err
	}
	if len(m.VolumeElements()) == 0 {
		return nil, fmt.Errorf("mesh has no volume elements")
	}
	fixed := m.SetNodes(SetFixed)
	if len(fixed) == 0 {
		return nil, fmt.Errorf("mesh has no %s set", SetFixed)
	}
	flux, err := domain.Quantity{Value: a.HeatFlux.DFlux, Unit: "W/m^2"}.In(domain.DimHeatFlux)
	if err != nil {
		return nil, err
	}
	loads, area, err := inpmesh.SurfaceFluxLoads(m, SetIrradiated, flux)
	if err != nil {
		return nil, err
	}
	if a.Solver.TimeInitialStep <= 0 || a.Solver.TimeEnd <= 0 {
		return nil, fmt.Errorf("invalid time stepping: end %g step %g", a.Solver.TimeEnd, a.Solver.TimeInitialStep)
	}

	return &Deck{
		Name:               a.Name,
		Mesh:               m,
		Material:           mat,
		MatName:            materialName(a.Material.Name),
		Fixed:              fixed,
		Loads:              loads,
		Area:               area,
		InitialTemperature: a.InitialTemperature.Temperature,
		TimeEnd:            a.Solver.TimeEnd,
		TimeStep:           a.Solver.TimeInitialStep,
	}, nil
}

// Increments is the number of fixed increments of the transient step.
func (d *Deck) Increments() int {
	return int(math.Ceil(d.TimeEnd/d.TimeStep - 1e-9))
}

// WriteTo writes the deck in CalculiX syntax.
func (d *Deck) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: bufio.NewWriter(w)}

	cw.printf("** thermomech transient for %s\n", d.Name)
	cw.printf("*HEADING\n%s\n", d.Name)

	cw.printf("*NODE, NSET=%s\n", SetAll)
	for _, id := range d.Mesh.NodeIDs() {
		n := d.Mesh.Nodes[id]
		cw.printf("%d, %s, %s, %s\n", id, num(n.X), num(n.Y), num(n.Z))
	}

	byType := map[string][]int{}
	for _, id := range d.Mesh.VolumeElements() {
		t := d.Mesh.Elements[id].Type
		byType[t] = append(byType[t], id)
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		cw.printf("*ELEMENT, TYPE=%s, ELSET=%s\n", t, SetElements)
		for _, id := range byType[t] {
			writeElement(cw, id, d.Mesh.Elements[id].Nodes)
		}
	}

	cw.printf("*NSET, NSET=%s\n", SetFixed)
	writeIDs(cw, d.Fixed)
	loaded := make([]int, len(d.Loads))
	for i, l := range d.Loads {
		loaded[i] = l.Node
	}
	cw.printf("*NSET, NSET=%s\n", SetIrradiated)
	writeIDs(cw, loaded)

	mv := d.Material
	cw.printf("*MATERIAL, NAME=%s\n", d.MatName)
	cw.printf("*ELASTIC\n%s, %s\n", num(mv.YoungsModulus), num(mv.PoissonRatio))
	cw.printf("*DENSITY\n%s\n", num(mv.Density))
	cw.printf("*CONDUCTIVITY\n%s\n", num(mv.ThermalConductivity))
	cw.printf("*EXPANSION\n%s\n", num(mv.ThermalExpansion))
	cw.printf("*SPECIFIC HEAT\n%s\n", num(mv.SpecificHeat))
	cw.printf("*SOLID SECTION, ELSET=%s, MATERIAL=%s\n", SetElements, d.MatName)

	cw.printf("*INITIAL CONDITIONS, TYPE=TEMPERATURE\n%s, %s\n", SetAll, num(d.InitialTemperature))

	cw.printf("*STEP, INC=%d\n", d.Increments()+1)
	cw.printf("*COUPLED TEMPERATURE-DISPLACEMENT, DIRECT\n")
	cw.printf("%s, %s, %s, %s\n", num(d.TimeStep), num(d.TimeEnd), num(d.TimeStep), num(d.TimeStep))
	cw.printf("*BOUNDARY\n%s, 1, 3, 0\n", SetFixed)
	cw.printf("** heat flux %s W/m^2 on %s mm^2\n", num(d.totalLoad()/d.Area*1e3), num(d.Area))
	cw.printf("*CFLUX\n")
	for _, l := range d.Loads {
		cw.printf("%d, %d, %s\n", l.Node, dofTemperature, num(l.Value))
	}
	cw.printf("*NODE FILE\nU, NT\n")
	cw.printf("*EL FILE\nS, HFL\n")
	cw.printf("*NODE PRINT, NSET=%s\nNT\n", SetAll)
	cw.printf("*END STEP\n")

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

func (d *Deck) totalLoad() float64 {
	s := 0.0
	for _, l := range d.Loads {
		s += l.Value
	}
	return s
}

func writeElement(cw *countWriter, id int, nodes []int) {
	// first line holds the id and up to 15 nodes, continuation lines 16
	fields := make([]string, 0, len(nodes)+1)
	fields = append(fields, strconv.Itoa(id))
	for _, n := range nodes {
		fields = append(fields, strconv.Itoa(n))
	}
	for len(fields) > 16 {
		cw.printf("%s,\n", strings.Join(fields[:16], ", "))
		fields = fields[16:]
	}
	cw.printf("%s\n", strings.Join(fields, ", "))
}

func writeIDs(cw *countWriter, ids []int) {
	for i := 0; i < len(ids); i += perLine {
		end := min(i+perLine, len(ids))
		parts := make([]string, 0, end-i)
		for _, id := range ids[i:end] {
			parts = append(parts, strconv.Itoa(id))
		}
		cw.printf("%s,\n", strings.Join(parts, ", "))
	}
}

// materialName makes a material name usable as a CalculiX identifier.
func materialName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := b.String()
	if s == "" {
		s = "MATERIAL"
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', 12, 64)
}

type countWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countWriter) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	n, err := fmt.Fprintf(c.w, format, args...)
	c.n += int64(n)
	c.err = err
}
