package inpmesh

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

func squareMesh(quadratic bool) *domain.Mesh {
	m := domain.NewMesh()
	// 10x10 square in the z=0 plane split into two triangles
	m.Nodes[1] = domain.Node{ID: 1, X: 0, Y: 0}
	m.Nodes[2] = domain.Node{ID: 2, X: 10, Y: 0}
	m.Nodes[3] = domain.Node{ID: 3, X: 10, Y: 10}
	m.Nodes[4] = domain.Node{ID: 4, X: 0, Y: 10}
	if !quadratic {
		m.Elements[1] = domain.Element{ID: 1, Type: "CPS3", Nodes: []int{1, 2, 3}}
		m.Elements[2] = domain.Element{ID: 2, Type: "CPS3", Nodes: []int{1, 3, 4}}
	} else {
		m.Nodes[5] = domain.Node{ID: 5, X: 5, Y: 0}
		m.Nodes[6] = domain.Node{ID: 6, X: 10, Y: 5}
		m.Nodes[7] = domain.Node{ID: 7, X: 5, Y: 5}
		m.Nodes[8] = domain.Node{ID: 8, X: 5, Y: 10}
		m.Nodes[9] = domain.Node{ID: 9, X: 0, Y: 5}
		m.Elements[1] = domain.Element{ID: 1, Type: "CPS6", Nodes: []int{1, 2, 3, 5, 6, 7}}
		m.Elements[2] = domain.Element{ID: 2, Type: "CPS6", Nodes: []int{1, 3, 4, 7, 8, 9}}
	}
	m.ElSets["IRRADIATED"] = []int{1, 2}
	return m
}

func loadsByNode(loads []NodalLoad) map[int]float64 {
	out := map[int]float64{}
	for _, l := range loads {
		out[l.Node] = l.Value
	}
	return out
}

func TestSurfaceFluxLoads_Linear(t *testing.T) {
	loads, area, err := SurfaceFluxLoads(squareMesh(false), "IRRADIATED", 0.6)
	if err != nil {
		t.Fatalf("SurfaceFluxLoads: %v", err)
	}
	chk.Float64(t, "area", 1e-12, area, 100)

	got := loadsByNode(loads)
	// each triangle carries 0.6*50 = 30, 10 per corner
	chk.Float64(t, "node 1", 1e-12, got[1], 20)
	chk.Float64(t, "node 2", 1e-12, got[2], 10)
	chk.Float64(t, "node 3", 1e-12, got[3], 20)
	chk.Float64(t, "node 4", 1e-12, got[4], 10)

	total := 0.0
	for _, l := range loads {
		total += l.Value
	}
	chk.Float64(t, "total", 1e-12, total, 60)
}

func TestSurfaceFluxLoads_QuadraticLoadsMidsideNodes(t *testing.T) {
	loads, _, err := SurfaceFluxLoads(squareMesh(true), "IRRADIATED", 0.6)
	if err != nil {
		t.Fatalf("SurfaceFluxLoads: %v", err)
	}
	got := loadsByNode(loads)
	for _, corner := range []int{1, 2, 3, 4} {
		if _, ok := got[corner]; ok {
			t.Fatalf("corner node %d should carry no load", corner)
		}
	}
	chk.Float64(t, "shared midside 7", 1e-12, got[7], 20)
	chk.Float64(t, "midside 5", 1e-12, got[5], 10)
	chk.Float64(t, "midside 9", 1e-12, got[9], 10)

	ids := make([]int, len(loads))
	for i, l := range loads {
		ids[i] = l.Node
	}
	chk.Ints(t, "sorted nodes", ids, []int{5, 6, 7, 8, 9})
}

func TestSurfaceFluxLoads_Errors(t *testing.T) {
	m := squareMesh(false)
	if _, _, err := SurfaceFluxLoads(m, "MISSING", 1); err == nil {
		t.Fatalf("expected error for missing set")
	}

	m.Elements[3] = domain.Element{ID: 3, Type: "C3D4", Nodes: []int{1, 2, 3, 4}}
	m.ElSets["MIXED"] = []int{1, 3}
	if _, _, err := SurfaceFluxLoads(m, "MIXED", 1); err == nil {
		t.Fatalf("expected error for volume element in surface set")
	}
}
