// Package gmsh meshes analysis geometry with the gmsh command line tool.
package gmsh

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/infra/procexec"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

var errorLine = regexp.MustCompile(`^\s*Error\s*:\s*(.*)$`)

type Mesher struct {
	binary string
	exec   *procexec.Executor
	log    *slog.Logger
}

// MesherOption allows configuring a Mesher.
type MesherOption func(*Mesher)

func WithLogger(l *slog.Logger) MesherOption {
	return func(m *Mesher) { m.log = l }
}

// NewMesher builds a Mesher running binary through exec.
func NewMesher(binary string, exec *procexec.Executor, opts ...MesherOption) *Mesher {
	m := &Mesher{binary: binary, exec: exec, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ ports.Mesher = (*Mesher)(nil)

// Mesh writes the script to scriptPath and runs gmsh on it. Any failure the
// tool reports, including running past the executor timeout, is a mesh error;
// a missing binary or a canceled context is returned unchanged. outPath only
// exists afterwards when meshing succeeded.
func (m *Mesher) Mesh(ctx context.Context, a *domain.Analysis, scriptPath, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		return &domain.OpError{Op: "gmsh.script", Kind: domain.KindExecution, Path: scriptPath, Err: err}
	}
	if err := writeScriptFile(scriptPath, a, outPath); err != nil {
		return err
	}
	// a stale mesh must not pass for a fresh one
	_ = os.Remove(outPath)

	if err := m.run(ctx, a, scriptPath, outPath); err != nil {
		// gmsh may have saved a partial or broken mesh before failing
		_ = os.Remove(outPath)
		return err
	}
	return nil
}

func (m *Mesher) run(ctx context.Context, a *domain.Analysis, scriptPath, outPath string) error {
	res, err := m.exec.Run(ctx, procexec.Command{
		Name: m.binary,
		Args: []string{"-", scriptPath},
		Dir:  filepath.Dir(scriptPath),
	})
	m.log.Debug("gmsh.done",
		slog.String("item", a.Name),
		slog.Int("exit_code", res.ExitCode),
		slog.Duration("duration", res.Duration),
	)

	if err != nil {
		var ee *procexec.ExitError
		switch {
		case errors.As(err, &ee):
			msg := firstError(res.Output)
			if msg == "" {
				msg = ee.Error()
			}
			return domain.NewMeshError("gmsh.run", scriptPath, msg)
		case procexec.IsTimeout(err):
			return domain.NewMeshError("gmsh.timeout", scriptPath, err.Error())
		}
		return err
	}

	if msg := firstError(res.Output); msg != "" {
		return domain.NewMeshError("gmsh.run", scriptPath, msg)
	}
	if fi, err := os.Stat(outPath); err != nil || fi.Size() == 0 {
		return domain.NewMeshError("gmsh.output", outPath, "mesher produced no mesh file")
	}
	return nil
}

func writeScriptFile(path string, a *domain.Analysis, outPath string) error {
	var buf bytes.Buffer
	if err := WriteScript(&buf, a, outPath); err != nil {
		return &domain.OpError{Op: "gmsh.script", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &domain.OpError{Op: "gmsh.script", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// firstError returns the message of the first "Error :" line gmsh printed.
func firstError(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if m := errorLine.FindStringSubmatch(sc.Text()); m != nil {
			msg := strings.TrimSpace(m[1])
			if msg == "" {
				msg = "gmsh reported an error"
			}
			return msg
		}
	}
	return ""
}
