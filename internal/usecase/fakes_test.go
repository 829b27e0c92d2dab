package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

type fakeLayout struct {
	existing map[string]bool
}

func newFakeLayout() *fakeLayout {
	return &fakeLayout{existing: map[string]bool{}}
}

func (l *fakeLayout) ItemDir(it domain.SweepItem) string { return filepath.Join("files", it.Name()) }
func (l *fakeLayout) GeometryPath(it domain.SweepItem) string {
	return filepath.Join(l.ItemDir(it), it.Name()+".step")
}
func (l *fakeLayout) DocumentPath(it domain.SweepItem) string {
	return filepath.Join(l.ItemDir(it), it.Name()+"_therm.json")
}
func (l *fakeLayout) MeshPath(it domain.SweepItem) string {
	return filepath.Join(l.ItemDir(it), it.Name()+"_mesh.inp")
}
func (l *fakeLayout) MesherScriptPath(it domain.SweepItem) string {
	return filepath.Join(l.ItemDir(it), it.Name()+".geo")
}
func (l *fakeLayout) SolverDir(it domain.SweepItem) string {
	return filepath.Join(l.ItemDir(it), "solver")
}
func (l *fakeLayout) Exists(path string) bool { return l.existing[path] }

func (l *fakeLayout) withGeometry(items ...domain.SweepItem) *fakeLayout {
	for _, it := range items {
		l.existing[l.GeometryPath(it)] = true
	}
	return l
}

type fakeDocs struct {
	saved  map[string]*domain.Analysis
	broken map[string]bool
	loaded []string
	err    error
}

func (d *fakeDocs) Save(path string, a *domain.Analysis) error {
	if d.err != nil {
		return d.err
	}
	if d.saved == nil {
		d.saved = map[string]*domain.Analysis{}
	}
	d.saved[path] = a
	return nil
}

// Load treats every path it is asked about as a document on disk unless it
// is marked broken.
func (d *fakeDocs) Load(path string) (*domain.Analysis, error) {
	d.loaded = append(d.loaded, path)
	if d.broken[path] {
		return nil, &domain.OpError{Op: "docstore.load", Kind: domain.KindInvalidConfig, Path: path, Err: domain.ErrInvalidConfig}
	}
	if a, ok := d.saved[path]; ok {
		return a, nil
	}
	return &domain.Analysis{Name: filepath.Base(path)}, nil
}

// fakeMesher "writes" the mesh by marking it existing in the layout.
type fakeMesher struct {
	layout *fakeLayout
	fail   map[string]error
	calls  []string
}

func (m *fakeMesher) Mesh(_ context.Context, a *domain.Analysis, _, outPath string) error {
	m.calls = append(m.calls, a.Name)
	if err := m.fail[a.Name]; err != nil {
		return err
	}
	m.layout.existing[outPath] = true
	return nil
}

type fakeMeshReader struct {
	reads []string
	err   error
}

func (r *fakeMeshReader) ReadMesh(path string) (*domain.Mesh, error) {
	r.reads = append(r.reads, path)
	if r.err != nil {
		return nil, r.err
	}
	m := domain.NewMesh()
	m.Nodes[1] = domain.Node{ID: 1}
	return m, nil
}

type fakeSolver struct {
	purged   []string
	solved   []string
	fail     map[string]error
	precheck error
}

func (s *fakeSolver) Purge(workDir string) error {
	s.purged = append(s.purged, workDir)
	return nil
}

func (s *fakeSolver) CheckPrerequisites(a *domain.Analysis, _ *domain.Mesh) (string, error) {
	if s.precheck != nil {
		return "", s.precheck
	}
	if a.Closed() {
		return "", errors.New("closed")
	}
	if a.Mesh.MeshPath == "" {
		return "", errors.New("no mesh")
	}
	return "ok " + a.Name, nil
}

func (s *fakeSolver) Solve(_ context.Context, a *domain.Analysis, _ *domain.Mesh, _ string) (domain.ResultSummary, error) {
	s.solved = append(s.solved, a.Name)
	if err := s.fail[a.Name]; err != nil {
		return domain.ResultSummary{}, err
	}
	return domain.ResultSummary{FinalTime: a.Solver.TimeEnd, MaxTemperature: 320, MinTemperature: 300, NodeCount: 1}, nil
}

type fakeStore struct {
	mu   sync.Mutex
	runs []domain.SweepRun
	err  error
}

func (s *fakeStore) SaveRun(run domain.SweepRun) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.runs = append(s.runs, run)
	return fmt.Sprintf("run-%d", len(s.runs)), nil
}

func (s *fakeStore) ListRuns() ([]domain.RunRef, error) { return nil, nil }

func (s *fakeStore) LoadRun(string) (domain.SweepRun, []byte, error) {
	return domain.SweepRun{}, nil, domain.ErrNotFound
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) ItemStarted(index, total int, it domain.SweepItem) {
	o.events = append(o.events, fmt.Sprintf("start %d/%d %s", index+1, total, it.Name()))
}

func (o *recordingObserver) StageStarted(it domain.SweepItem, stage domain.Stage) {
	o.events = append(o.events, fmt.Sprintf("stage %s %s", it.Name(), stage))
}

func (o *recordingObserver) Info(it domain.SweepItem, msg string) {
	o.events = append(o.events, fmt.Sprintf("info %s %s", it.Name(), msg))
}

func (o *recordingObserver) ItemFinished(_, _ int, res domain.ItemResult) {
	o.events = append(o.events, fmt.Sprintf("done %s %s", res.Name, res.Status))
}

type fakeTools struct {
	missing map[string]bool
}

func (f fakeTools) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", &domain.OpError{Op: "lookpath", Kind: domain.KindNotFound, Path: name, Err: domain.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

type fakeConfigLoader struct {
	cfg domain.Config
	err error
}

func (f fakeConfigLoader) LoadConfig(string) (domain.Config, error) {
	return f.cfg, f.err
}

var (
	_ ports.ArtifactLayout = (*fakeLayout)(nil)
	_ ports.DocumentStore  = (*fakeDocs)(nil)
	_ ports.Mesher         = (*fakeMesher)(nil)
	_ ports.MeshReader     = (*fakeMeshReader)(nil)
	_ ports.Solver         = (*fakeSolver)(nil)
	_ ports.RunStore       = (*fakeStore)(nil)
	_ ports.SweepObserver  = (*recordingObserver)(nil)
	_ ports.ToolLocator    = fakeTools{}
	_ ports.ConfigLoader   = fakeConfigLoader{}
)
