package inpmesh

import (
	"fmt"
	"sort"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// NodalLoad is a concentrated load on one node.
type NodalLoad struct {
	Node  int
	Value float64
}

// SurfaceFluxLoads converts a uniform flux (per unit area, solver units) on
// the triangles of an element set into consistent nodal loads. Linear
// triangles put a third of the element load on each corner; quadratic
// triangles put it on the mid-side nodes, their corner share being zero.
// It also returns the total area of the set.
func SurfaceFluxLoads(m *domain.Mesh, set string, flux float64) ([]NodalLoad, float64, error) {
	elems := m.SetElements(set)
	if len(elems) == 0 {
		return nil, 0, fmt.Errorf("element set %q is empty or missing", set)
	}

	acc := map[int]float64{}
	total := 0.0
	for _, eid := range elems {
		e, ok := m.Elements[eid]
		if !ok {
			return nil, 0, fmt.Errorf("element set %q references unknown element %d", set, eid)
		}
		if !domain.IsTriangleType(e.Type) {
			return nil, 0, fmt.Errorf("element %d of set %q has unsupported surface type %s", eid, set, e.Type)
		}

		corners, err := lookupNodes(m, e.Nodes[:3])
		if err != nil {
			return nil, 0, fmt.Errorf("element %d: %w", eid, err)
		}
		area := domain.TriangleArea(corners[0], corners[1], corners[2])
		total += area
		share := flux * area / 3

		switch {
		case len(e.Nodes) == 3:
			for _, n := range e.Nodes {
				acc[n] += share
			}
		case len(e.Nodes) == 6:
			for _, n := range e.Nodes[3:] {
				acc[n] += share
			}
		default:
			return nil, 0, fmt.Errorf("element %d has %d nodes, want 3 or 6", eid, len(e.Nodes))
		}
	}

	out := make([]NodalLoad, 0, len(acc))
	for n, v := range acc {
		out = append(out, NodalLoad{Node: n, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out, total, nil
}

func lookupNodes(m *domain.Mesh, ids []int) ([]domain.Node, error) {
	out := make([]domain.Node, len(ids))
	for i, id := range ids {
		n, ok := m.Nodes[id]
		if !ok {
			return nil, fmt.Errorf("unknown node %d", id)
		}
		out[i] = n
	}
	return out, nil
}
