package inpmesh

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// Single tetrahedron with one linear face, as gmsh exports it with
// Mesh.SaveGroupsOfNodes=1.
const tetINP = `*Heading
 /tmp/hex_3000_mesh.inp
*NODE
1, 0, 0, 0
2, 10, 0, 0
3, 0, 10, 0
4, 0, 0, 10
******* E L E M E N T S *************
*ELEMENT, type=CPS3, ELSET=Surface1
1, 1, 2, 3
*ELEMENT, type=C3D4, ELSET=Volume1
2, 1, 2, 3, 4
*ELSET,ELSET=IRRADIATED
1, 
*ELSET,ELSET=SOLID
2, 
*NSET,NSET=FIXED
1, 2, 3, 
`

func writeINP(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "mesh.inp")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestReadMesh_GmshExport(t *testing.T) {
	m, err := NewReader().ReadMesh(writeINP(t, tetINP))
	if err != nil {
		t.Fatalf("ReadMesh: %v", err)
	}

	if len(m.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(m.Nodes))
	}
	chk.Float64(t, "node 2 x", 1e-15, m.Nodes[2].X, 10)
	chk.Float64(t, "node 4 z", 1e-15, m.Nodes[4].Z, 10)

	if got := m.Elements[2].Type; got != "C3D4" {
		t.Fatalf("expected C3D4, got %q", got)
	}
	chk.Ints(t, "volume elements", m.VolumeElements(), []int{2})
	chk.Ints(t, "irradiated elements", m.SetElements("IRRADIATED"), []int{1})
	chk.Ints(t, "fixed nodes", m.SetNodes("FIXED"), []int{1, 2, 3})
	chk.Ints(t, "solid nodes from elset", m.SetNodes("solid"), []int{1, 2, 3, 4})
}

func TestParse_WrappedConnectivity(t *testing.T) {
	var b strings.Builder
	b.WriteString("*NODE\n")
	for i := 1; i <= 20; i++ {
		b.WriteString(strconv.Itoa(i) + ", 0, 0, 0\n")
	}
	b.WriteString("*ELEMENT, TYPE=C3D20, ELSET=Eall\n")
	b.WriteString("7, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,\n")
	b.WriteString("16, 17, 18, 19, 20\n")

	m, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e, ok := m.Elements[7]
	if !ok {
		t.Fatalf("element 7 missing")
	}
	if len(e.Nodes) != 20 {
		t.Fatalf("expected 20 nodes, got %d", len(e.Nodes))
	}
	chk.Ints(t, "Eall", m.SetElements("EALL"), []int{7})
}

func TestParse_Generate(t *testing.T) {
	src := `*NODE, NSET=Nall
1, 0, 0, 0
2, 1, 0, 0
3, 2, 0, 0
4, 3, 0, 0
5, 4, 0, 0
*NSET, NSET=ODD, GENERATE
1, 5, 2
*ELSET, ELSET=RANGE, GENERATE
10, 12
`
	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	chk.Ints(t, "odd", m.SetNodes("ODD"), []int{1, 3, 5})
	chk.Ints(t, "nall", m.SetNodes("NALL"), []int{1, 2, 3, 4, 5})
	chk.Ints(t, "range", m.ElSets["RANGE"], []int{10, 11, 12})
}

func TestParse_SetReferences(t *testing.T) {
	src := `*NODE
1, 0, 0, 0
2, 1, 0, 0
3, 0, 1, 0
*ELEMENT, TYPE=CPS3, ELSET=Surface12
1, 1, 2, 3
*ELEMENT, TYPE=CPS3, ELSET=Surface14
2, 1, 3, 2
*ELSET, ELSET=IRRADIATED
Surface12, surface14,
`
	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	chk.Ints(t, "irradiated", m.SetElements("IRRADIATED"), []int{1, 2})
}

func TestParse_SkipsUnknownKeywordsAndComments(t *testing.T) {
	src := `** written by hand
*HEADING
some title
*NODE
1, 0, 0, 0
*MATERIAL, NAME=STEEL
*ELASTIC
200000, 0.29
`
	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(m.Nodes))
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"no nodes":        "*HEADING\nx\n",
		"bad node id":     "*NODE\nx, 0, 0, 0\n",
		"bad coordinate":  "*NODE\n1, a, 0, 0\n",
		"element no type": "*NODE\n1,0,0,0\n*ELEMENT, ELSET=E\n1, 1\n",
		"short element":   "*NODE\n1,0,0,0\n*ELEMENT, TYPE=C3D4\n1, 1, 1, 1\n*NSET, NSET=A\n1\n",
		"bad generate":    "*NODE\n1,0,0,0\n*NSET, NSET=A, GENERATE\n5, 1\n",
		"unknown set ref": "*NODE\n1,0,0,0\n*NSET, NSET=A\nB\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(src)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestReadMesh_Missing(t *testing.T) {
	_, err := NewReader().ReadMesh(filepath.Join(t.TempDir(), "nope.inp"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
