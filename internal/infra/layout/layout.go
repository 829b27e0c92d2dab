// Package layout maps sweep items to their files under the workspace.
//
//	<files>/<name>/<name>.step        geometry input
//	<files>/<name>/<name>_therm.json  analysis document
//	<files>/<name>/<name>_mesh.inp    cached mesh
//	<files>/<name>/<name>.geo         mesher script
//	<files>/<name>/solver/            solver deck and results
package layout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

const defaultFilesDir = "files"

type Layout struct {
	filesDir string
}

func New(root string, cfg domain.PathsConfig) *Layout {
	dir := strings.TrimSpace(cfg.FilesDir)
	if dir == "" {
		dir = defaultFilesDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return &Layout{filesDir: filepath.Clean(dir)}
}

var _ ports.ArtifactLayout = (*Layout)(nil)

func (l *Layout) FilesDir() string { return l.filesDir }

func (l *Layout) ItemDir(it domain.SweepItem) string {
	return filepath.Join(l.filesDir, it.Name())
}

func (l *Layout) GeometryPath(it domain.SweepItem) string {
	return l.file(it, ".step")
}

func (l *Layout) DocumentPath(it domain.SweepItem) string {
	return l.file(it, "_therm.json")
}

func (l *Layout) MeshPath(it domain.SweepItem) string {
	return l.file(it, "_mesh.inp")
}

func (l *Layout) MesherScriptPath(it domain.SweepItem) string {
	return l.file(it, ".geo")
}

func (l *Layout) SolverDir(it domain.SweepItem) string {
	return filepath.Join(l.ItemDir(it), "solver")
}

// Exists reports whether path names an existing regular, non-empty file.
// An empty file left by an interrupted write does not count as cached.
func (l *Layout) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

func (l *Layout) file(it domain.SweepItem, suffix string) string {
	return filepath.Join(l.ItemDir(it), it.Name()+suffix)
}
