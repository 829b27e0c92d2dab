package gmsh

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// Physical group names shared with the solver deck.
const (
	GroupIrradiated = "IRRADIATED"
	GroupFixed      = "FIXED"
	GroupSolid      = "SOLID"
)

// WriteScript writes the .geo script that meshes the analysis geometry and
// saves it to outPath in INP format. Faces map to OpenCASCADE surface tags
// in the order they were imported.
func WriteScript(w io.Writer, a *domain.Analysis, outPath string) error {
	top, err := domain.FaceIndices(a.HeatFlux.Faces)
	if err != nil {
		return fmt.Errorf("heat flux faces: %w", err)
	}
	bottom, err := domain.FaceIndices(a.Fixed.Faces)
	if err != nil {
		return fmt.Errorf("fixed faces: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n", a.Name)
	b.WriteString("SetFactory(\"OpenCASCADE\");\n")
	fmt.Fprintf(&b, "Merge %s;\n", quote(a.Part.GeometryPath))
	b.WriteString("Geometry.OCCFixDegenerated = 0;\n")
	b.WriteString("Geometry.OCCFixSmallEdges = 0;\n")
	b.WriteString("Geometry.OCCFixSmallFaces = 0;\n\n")

	fmt.Fprintf(&b, "Physical Surface(%q) = {%s};\n", GroupIrradiated, joinInts(top))
	fmt.Fprintf(&b, "Physical Surface(%q) = {%s};\n", GroupFixed, joinInts(bottom))
	b.WriteString("vols() = Volume{:};\n")
	fmt.Fprintf(&b, "Physical Volume(%q) = {vols()};\n\n", GroupSolid)

	fmt.Fprintf(&b, "Mesh.CharacteristicLengthMin = %s;\n", formatFloat(a.Mesh.CharacteristicLengthMin))
	fmt.Fprintf(&b, "Mesh.CharacteristicLengthMax = %s;\n", formatFloat(a.Mesh.CharacteristicLengthMax))
	fmt.Fprintf(&b, "Mesh.ElementOrder = %d;\n", a.Mesh.ElementOrder)
	if a.Mesh.ElementOrder > 1 {
		b.WriteString("Mesh.SecondOrderLinear = 0;\n")
	}
	b.WriteString("Mesh.Optimize = 1;\n")
	b.WriteString("Mesh.SaveAll = 0;\n")
	b.WriteString("Mesh.SaveGroupsOfNodes = 1;\n")
	b.WriteString("Mesh.Format = 39;\n\n")

	b.WriteString("Mesh 3;\n")
	b.WriteString("Coherence Mesh;\n")
	fmt.Fprintf(&b, "Save %s;\n", quote(outPath))

	_, err = io.WriteString(w, b.String())
	return err
}

func quote(path string) string {
	p := filepath.ToSlash(path)
	p = strings.ReplaceAll(p, `"`, `\"`)
	return `"` + p + `"`
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
