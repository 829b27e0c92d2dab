package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape is the base cross-section of a swept part.
type Shape string

const (
	ShapeHex Shape = "hex"
	ShapeCir Shape = "cir"
	ShapeSqr Shape = "sqr"
)

// KnownShapes lists the shapes face selectors can be configured for.
var KnownShapes = []Shape{ShapeHex, ShapeCir, ShapeSqr}

// ParseShape validates a shape name.
func ParseShape(s string) (Shape, error) {
	sh := Shape(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range KnownShapes {
		if sh == k {
			return sh, nil
		}
	}
	return "", fmt.Errorf("unknown shape %q (expected hex|cir|sqr)", s)
}

// ShapeFromName finds the shape token inside an item or document name,
// e.g. "hex_3000" -> hex.
func ShapeFromName(name string) (Shape, bool) {
	for _, k := range KnownShapes {
		if strings.Contains(name, string(k)) {
			return k, true
		}
	}
	return "", false
}

// SweepItem is one (shape, width) configuration of the sweep.
type SweepItem struct {
	Shape Shape `json:"shape"`
	Width int   `json:"width"`
}

// Name is the artifact naming key shared by every file of the item.
func (it SweepItem) Name() string {
	return fmt.Sprintf("%s_%d", it.Shape, it.Width)
}

// Sweep is the cartesian product of bases and widths.
type Sweep struct {
	Bases  []Shape
	Widths []int
}

// Items expands the sweep in base-major order.
func (s Sweep) Items() []SweepItem {
	out := make([]SweepItem, 0, len(s.Bases)*len(s.Widths))
	for _, b := range s.Bases {
		for _, w := range s.Widths {
			out = append(out, SweepItem{Shape: b, Width: w})
		}
	}
	return out
}

// FaceRef names one face of the part geometry, e.g. "Face12".
type FaceRef string

// Index returns the 1-based face number.
func (f FaceRef) Index() (int, error) {
	s := strings.TrimSpace(string(f))
	if !strings.HasPrefix(s, "Face") {
		return 0, fmt.Errorf("face reference %q must look like Face<N>", string(f))
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "Face"))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("face reference %q must look like Face<N> with N >= 1", string(f))
	}
	return n, nil
}

// FaceSelector is the set of faces a constraint is applied to.
type FaceSelector []FaceRef

// Indices returns the 1-based face numbers of the selector.
func (fs FaceSelector) Indices() ([]int, error) {
	out := make([]int, 0, len(fs))
	for _, f := range fs {
		n, err := f.Index()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Strings is used for display and for the persisted document.
func (fs FaceSelector) Strings() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

// FaceSelectors maps each shape to its selector.
type FaceSelectors map[Shape]FaceSelector

// For resolves the selector for the shape found in the given item.
func (m FaceSelectors) For(it SweepItem) (FaceSelector, bool) {
	sh, ok := ShapeFromName(it.Name())
	if !ok {
		return nil, false
	}
	sel, ok := m[sh]
	if !ok || len(sel) == 0 {
		return nil, false
	}
	return sel, true
}
