package domain

import (
	"math"
	"sort"
	"strings"
)

// Node is a mesh vertex; coordinates are in mm.
type Node struct {
	ID int
	X  float64
	Y  float64
	Z  float64
}

// Element is a mesh cell in solver element naming (C3D4, C3D10, CPS3...).
type Element struct {
	ID    int
	Type  string
	Nodes []int
}

// Mesh is the solver-independent view of a meshed part.
type Mesh struct {
	Nodes    map[int]Node
	Elements map[int]Element
	ElSets   map[string][]int
	NSets    map[string][]int
}

// NewMesh returns an empty, ready to fill mesh.
func NewMesh() *Mesh {
	return &Mesh{
		Nodes:    map[int]Node{},
		Elements: map[int]Element{},
		ElSets:   map[string][]int{},
		NSets:    map[string][]int{},
	}
}

// IsVolumeType reports whether an element type is a 3D solid.
func IsVolumeType(t string) bool {
	return strings.HasPrefix(strings.ToUpper(t), "C3D")
}

// IsTriangleType reports whether an element type is a 3- or 6-node triangle.
func IsTriangleType(t string) bool {
	switch strings.ToUpper(t) {
	case "CPS3", "CPS6", "S3", "S6", "STRI65", "CPE3", "CPE6", "M3D3", "M3D6":
		return true
	}
	return false
}

// VolumeElements returns the solid element IDs, sorted.
func (m *Mesh) VolumeElements() []int {
	var out []int
	for id, e := range m.Elements {
		if IsVolumeType(e.Type) {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// NodeIDs returns every node ID, sorted.
func (m *Mesh) NodeIDs() []int {
	out := make([]int, 0, len(m.Nodes))
	for id := range m.Nodes {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// SetNodes resolves a named group to node IDs: a node set when present,
// otherwise the union of the nodes of the element set. Sorted, unique.
func (m *Mesh) SetNodes(name string) []int {
	key := findSetKey(m.NSets, name)
	if key != "" {
		return uniqueSorted(m.NSets[key])
	}

	key = findSetKey(m.ElSets, name)
	if key == "" {
		return nil
	}
	var ids []int
	for _, eid := range m.ElSets[key] {
		if e, ok := m.Elements[eid]; ok {
			ids = append(ids, e.Nodes...)
		}
	}
	return uniqueSorted(ids)
}

// SetElements returns the element IDs of a named element set.
func (m *Mesh) SetElements(name string) []int {
	key := findSetKey(m.ElSets, name)
	if key == "" {
		return nil
	}
	return uniqueSorted(m.ElSets[key])
}

// TriangleArea is the area of the triangle spanned by three nodes.
func TriangleArea(a, b, c Node) float64 {
	ux, uy, uz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	vx, vy, vz := c.X-a.X, c.Y-a.Y, c.Z-a.Z
	cx := uy*vz - uz*vy
	cy := uz*vx - ux*vz
	cz := ux*vy - uy*vx
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

// Set names are matched case-insensitively: solver decks upper-case them.
func findSetKey[T any](sets map[string]T, name string) string {
	if _, ok := sets[name]; ok {
		return name
	}
	for k := range sets {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return ""
}

func uniqueSorted(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	cp := append([]int(nil), in...)
	sort.Ints(cp)
	out := cp[:1]
	for _, v := range cp[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
