package ccx

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/infra/procexec"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

// JobName is the solver job of an analysis; the deck is JobName + ".inp".
func JobName(a *domain.Analysis) string {
	return a.Name + "_therm"
}

type Solver struct {
	binary  string
	threads int
	exec    *procexec.Executor
	log     *slog.Logger
}

// SolverOption allows configuring a Solver.
type SolverOption func(*Solver)

func WithLogger(l *slog.Logger) SolverOption {
	return func(s *Solver) { s.log = l }
}

// WithThreads sets OMP_NUM_THREADS for the solver process.
func WithThreads(n int) SolverOption {
	return func(s *Solver) {
		if n > 0 {
			s.threads = n
		}
	}
}

func NewSolver(binary string, exec *procexec.Executor, opts ...SolverOption) *Solver {
	s := &Solver{binary: binary, threads: 1, exec: exec, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.Solver = (*Solver)(nil)

// Purge deletes the files of a previous solve. Subdirectories are kept.
func (s *Solver) Purge(workDir string) error {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &domain.OpError{Op: "ccx.purge", Kind: domain.KindExecution, Path: workDir, Err: err}
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(workDir, e.Name())
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &domain.OpError{Op: "ccx.purge", Kind: domain.KindExecution, Path: p, Err: err}
		}
	}
	return nil
}

// CheckPrerequisites verifies the analysis can be solved on mesh and
// returns a one-line report of what will be solved.
func (s *Solver) CheckPrerequisites(a *domain.Analysis, mesh *domain.Mesh) (string, error) {
	fail := func(msg string) (string, error) {
		return "", &domain.OpError{
			Op:   "ccx.prerequisites",
			Kind: domain.KindSolver,
			Path: a.Name,
			Err:  fmt.Errorf("%w: %s", domain.ErrSolver, msg),
		}
	}

	if a.Closed() {
		return fail(domain.ErrDocumentClosed.Error())
	}
	if a.Mesh.MeshPath == "" || mesh == nil || len(mesh.Nodes) == 0 {
		return fail("no mesh attached")
	}
	if _, err := s.exec.LookPath(s.binary); err != nil {
		return "", err
	}
	d, err := BuildDeck(a, mesh)
	if err != nil {
		return fail(err.Error())
	}

	return fmt.Sprintf("material %s, %d nodes, %d volume elements, %d fixed nodes, %d flux nodes on %.1f mm^2, %d increments",
		a.Material.Name, len(mesh.Nodes), len(mesh.VolumeElements()), len(d.Fixed), len(d.Loads), d.Area, d.Increments()), nil
}

// Solve writes the deck into workDir, runs ccx on it and summarizes the
// final temperature field.
func (s *Solver) Solve(ctx context.Context, a *domain.Analysis, mesh *domain.Mesh, workDir string) (domain.ResultSummary, error) {
	d, err := BuildDeck(a, mesh)
	if err != nil {
		return domain.ResultSummary{}, &domain.OpError{
			Op:   "ccx.deck",
			Kind: domain.KindSolver,
			Path: a.Name,
			Err:  fmt.Errorf("%w: %v", domain.ErrSolver, err),
		}
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return domain.ResultSummary{}, &domain.OpError{Op: "ccx.workdir", Kind: domain.KindExecution, Path: workDir, Err: err}
	}
	job := JobName(a)
	deckPath := filepath.Join(workDir, job+".inp")
	if err := writeDeck(deckPath, d); err != nil {
		return domain.ResultSummary{}, err
	}

	n := strconv.Itoa(s.threads)
	res, err := s.exec.Run(ctx, procexec.Command{
		Name: s.binary,
		Args: []string{"-i", job},
		Dir:  workDir,
		Env:  []string{"OMP_NUM_THREADS=" + n, "CCX_NPROC_EQUATION_SOLVER=" + n},
	})
	s.log.Debug("ccx.done",
		slog.String("item", a.Name),
		slog.Int("exit_code", res.ExitCode),
		slog.Duration("duration", res.Duration),
		slog.Bool("output_truncated", res.Truncated),
	)

	if err != nil {
		var ee *procexec.ExitError
		if !errors.As(err, &ee) {
			return domain.ResultSummary{}, err
		}
		msg := firstSolverError(res.Output)
		if msg == "" {
			msg = ee.Error()
		}
		return domain.ResultSummary{}, solverError(deckPath, msg)
	}
	if msg := firstSolverError(res.Output); msg != "" {
		return domain.ResultSummary{}, solverError(deckPath, msg)
	}

	datPath := filepath.Join(workDir, job+".dat")
	f, err := os.Open(datPath)
	if err != nil {
		return domain.ResultSummary{}, solverError(datPath, "solver produced no .dat output")
	}
	defer f.Close()
	sum, err := ParseTemperatures(f)
	if err != nil {
		return domain.ResultSummary{}, solverError(datPath, err.Error())
	}

	for _, ext := range []string{".frd", ".dat", ".sta", ".cvg"} {
		p := filepath.Join(workDir, job+ext)
		if _, err := os.Stat(p); err == nil {
			sum.Files = append(sum.Files, p)
		}
	}
	return sum, nil
}

func writeDeck(path string, d *Deck) error {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return &domain.OpError{Op: "ccx.deck", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &domain.OpError{Op: "ccx.deck", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

func solverError(path, msg string) error {
	return &domain.OpError{
		Op:   "ccx.run",
		Kind: domain.KindSolver,
		Path: path,
		Err:  fmt.Errorf("%w: %s", domain.ErrSolver, msg),
	}
}

// firstSolverError returns the first "*ERROR" message ccx printed, joined
// with its continuation line when the message spans two.
func firstSolverError(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "*ERROR") {
			continue
		}
		msg := line
		if sc.Scan() {
			if next := strings.TrimSpace(sc.Text()); next != "" && !strings.HasPrefix(next, "*") {
				msg += " " + next
			}
		}
		return msg
	}
	return ""
}
