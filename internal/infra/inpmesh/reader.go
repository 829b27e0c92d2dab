// Package inpmesh reads meshes in the Abaqus/CalculiX input format, the
// format gmsh exports for the solver, and derives nodal loads from them.
package inpmesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

// nodes per element for types whose connectivity may wrap onto a second line
var nodesPerType = map[string]int{
	"C3D4": 4, "C3D6": 6, "C3D8": 8, "C3D10": 10, "C3D15": 15, "C3D20": 20,
	"CPS3": 3, "CPS4": 4, "CPS6": 6, "CPS8": 8,
	"S3": 3, "S4": 4, "S6": 6, "S8": 8,
	"T3D2": 2, "T3D3": 3,
}

type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

var _ ports.MeshReader = (*Reader)(nil)

func (r *Reader) ReadMesh(path string) (*domain.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "inpmesh.read",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "inpmesh.parse",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return m, nil
}

type section int

const (
	secNone section = iota
	secNode
	secElement
	secElset
	secNset
)

type parser struct {
	m *domain.Mesh

	sec      section
	elemType string
	setName  string
	generate bool

	// pending element connectivity spread over several lines
	pending []int
}

// Parse reads an INP stream. Unknown keywords and their data lines are
// skipped.
func Parse(r io.Reader) (*domain.Mesh, error) {
	p := &parser{m: domain.NewMesh()}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "**") {
			continue
		}
		var err error
		if strings.HasPrefix(line, "*") {
			err = p.keyword(line)
		} else {
			err = p.data(line)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := p.flushElement(); err != nil {
		return nil, err
	}
	if len(p.m.Nodes) == 0 {
		return nil, fmt.Errorf("mesh has no nodes")
	}
	return p.m, nil
}

func (p *parser) keyword(line string) error {
	if err := p.flushElement(); err != nil {
		return err
	}

	parts := strings.Split(line, ",")
	kw := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(parts[0], "*")))
	params := map[string]string{}
	flags := map[string]bool{}
	for _, raw := range parts[1:] {
		k, v, ok := strings.Cut(raw, "=")
		k = strings.ToUpper(strings.TrimSpace(k))
		if ok {
			params[k] = strings.TrimSpace(v)
		} else if k != "" {
			flags[k] = true
		}
	}

	p.sec = secNone
	p.generate = flags["GENERATE"]
	switch kw {
	case "NODE":
		p.sec = secNode
		if name := params["NSET"]; name != "" {
			p.setName = name
		} else {
			p.setName = ""
		}
	case "ELEMENT":
		t := strings.ToUpper(params["TYPE"])
		if t == "" {
			return fmt.Errorf("*ELEMENT without TYPE")
		}
		p.sec = secElement
		p.elemType = t
		p.setName = params["ELSET"]
	case "ELSET":
		if params["ELSET"] == "" {
			return fmt.Errorf("*ELSET without ELSET name")
		}
		p.sec = secElset
		p.setName = params["ELSET"]
	case "NSET":
		if params["NSET"] == "" {
			return fmt.Errorf("*NSET without NSET name")
		}
		p.sec = secNset
		p.setName = params["NSET"]
	}
	return nil
}

func (p *parser) data(line string) error {
	switch p.sec {
	case secNode:
		f := splitFields(line)
		if len(f) < 3 {
			return fmt.Errorf("node line needs id and at least two coordinates: %q", line)
		}
		id, err := strconv.Atoi(f[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q", f[0])
		}
		var xyz [3]float64
		for i := 1; i < len(f) && i <= 3; i++ {
			v, err := strconv.ParseFloat(f[i], 64)
			if err != nil {
				return fmt.Errorf("invalid coordinate %q of node %d", f[i], id)
			}
			xyz[i-1] = v
		}
		p.m.Nodes[id] = domain.Node{ID: id, X: xyz[0], Y: xyz[1], Z: xyz[2]}
		if p.setName != "" {
			p.m.NSets[p.setName] = append(p.m.NSets[p.setName], id)
		}

	case secElement:
		ids, err := parseInts(line)
		if err != nil {
			return err
		}
		p.pending = append(p.pending, ids...)
		want, known := nodesPerType[p.elemType]
		if !known || len(p.pending) >= want+1 {
			return p.flushElement()
		}

	case secElset, secNset:
		sets := p.m.NSets
		if p.sec == secElset {
			sets = p.m.ElSets
		}
		var ids []int
		if p.generate {
			gen, err := parseInts(line)
			if err != nil {
				return err
			}
			if ids, err = expandGenerate(gen); err != nil {
				return err
			}
		} else {
			var err error
			if ids, err = setMembers(sets, line); err != nil {
				return err
			}
		}
		sets[p.setName] = append(sets[p.setName], ids...)
	}
	return nil
}

// setMembers reads a set data line. Entries are IDs or names of sets
// defined earlier, which are expanded in place.
func setMembers(sets map[string][]int, line string) ([]int, error) {
	var out []int
	for _, s := range splitFields(line) {
		if v, err := strconv.Atoi(s); err == nil {
			out = append(out, v)
			continue
		}
		ref, ok := sets[s]
		if !ok {
			for k, v := range sets {
				if strings.EqualFold(k, s) {
					ref, ok = v, true
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("unknown set or invalid id %q", s)
		}
		out = append(out, ref...)
	}
	return out, nil
}

func (p *parser) flushElement() error {
	if len(p.pending) == 0 {
		return nil
	}
	ids := p.pending
	p.pending = nil

	if want, ok := nodesPerType[p.elemType]; ok && len(ids) != want+1 {
		return fmt.Errorf("element %d of type %s has %d nodes, want %d", ids[0], p.elemType, len(ids)-1, want)
	}
	if len(ids) < 2 {
		return fmt.Errorf("element line without nodes")
	}
	e := domain.Element{ID: ids[0], Type: p.elemType, Nodes: ids[1:]}
	p.m.Elements[e.ID] = e
	if p.setName != "" {
		p.m.ElSets[p.setName] = append(p.m.ElSets[p.setName], e.ID)
	}
	return nil
}

func expandGenerate(ids []int) ([]int, error) {
	if len(ids) < 2 || len(ids) > 3 {
		return nil, fmt.Errorf("GENERATE line needs start, end[, step]")
	}
	step := 1
	if len(ids) == 3 {
		step = ids[2]
	}
	if step <= 0 || ids[1] < ids[0] {
		return nil, fmt.Errorf("invalid GENERATE range %v", ids)
	}
	var out []int
	for i := ids[0]; i <= ids[1]; i += step {
		out = append(out, i)
	}
	return out, nil
}

func splitFields(line string) []string {
	raw := strings.Split(line, ",")
	out := raw[:0]
	for _, r := range raw {
		if s := strings.TrimSpace(r); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseInts(line string) ([]int, error) {
	f := splitFields(line)
	out := make([]int, 0, len(f))
	for _, s := range f {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		out = append(out, v)
	}
	return out, nil
}
