package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/infra/ccx"
	"github.com/MarcoAyalaT/Vicente/internal/infra/config"
	"github.com/MarcoAyalaT/Vicente/internal/infra/docstore"
	"github.com/MarcoAyalaT/Vicente/internal/infra/gmsh"
	"github.com/MarcoAyalaT/Vicente/internal/infra/inpmesh"
	"github.com/MarcoAyalaT/Vicente/internal/infra/layout"
	"github.com/MarcoAyalaT/Vicente/internal/infra/logger"
	"github.com/MarcoAyalaT/Vicente/internal/infra/procexec"
	"github.com/MarcoAyalaT/Vicente/internal/infra/runstore"
	"github.com/MarcoAyalaT/Vicente/internal/infra/workspacefinder"
)

type workspaceCtx struct {
	root       string
	configPath string
	log        *slog.Logger
	cleanup    func() error

	cfg    domain.Config
	layout *layout.Layout
	docs   *docstore.JSONStore
	mesher *gmsh.Mesher
	meshes *inpmesh.Reader
	solver *ccx.Solver
	store  *runstore.JSONStore
	tools  *procexec.Executor
}

// openWorkspace resolves the workspace root and starts logging there. The
// configuration is not read yet.
func openWorkspace(g *globalFlags) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(g.workspace)
	if err != nil {
		return nil, err
	}

	lc := logger.Config{Root: root, Debug: g.debug}
	if strings.TrimSpace(g.logLevel) != "" {
		lc.Console = os.Stderr
		lc.ConsoleLevel = g.logLevel
		lc.ConsoleFormat = g.logFormat
	}
	cleanup, _ := logger.Setup(lc)

	return &workspaceCtx{
		root:       root,
		configPath: workspacefinder.ConfigPath(root, g.config),
		log:        logger.L(),
		cleanup:    cleanup,
		tools:      procexec.NewExecutor(),
	}, nil
}

func (ws *workspaceCtx) Close() {
	if ws != nil && ws.cleanup != nil {
		_ = ws.cleanup()
	}
}

// loadConfig reads the configuration and wires every adapter from it.
func (ws *workspaceCtx) loadConfig() (domain.Config, error) {
	cfg, err := config.NewLoader().LoadConfig(ws.configPath)
	if err != nil {
		ws.log.Error("config.load.failed", "path", ws.configPath, "error", err.Error())
		return domain.Config{}, err
	}
	ws.wire(cfg)
	return cfg, nil
}

func (ws *workspaceCtx) wire(cfg domain.Config) {
	ws.cfg = cfg
	ws.layout = layout.New(ws.root, cfg.Paths)
	ws.docs = docstore.NewJSONStore()
	ws.meshes = inpmesh.NewReader()
	ws.store = runstore.NewJSONStore(ws.root, cfg, runstore.WithIndex(true))

	meshExec := procexec.NewExecutor(
		procexec.WithTimeout(cfg.Tools.MeshTimeout),
		procexec.WithLogger(ws.log),
	)
	solveExec := procexec.NewExecutor(
		procexec.WithTimeout(cfg.Tools.SolverTimeout),
		procexec.WithLogger(ws.log),
	)
	ws.mesher = gmsh.NewMesher(cfg.Tools.Gmsh, meshExec, gmsh.WithLogger(ws.log))
	ws.solver = ccx.NewSolver(cfg.Tools.CCX, solveExec,
		ccx.WithThreads(cfg.Tools.Threads),
		ccx.WithLogger(ws.log),
	)
}

// runStore opens the run store. A broken configuration falls back to the
// default runs directory so stored runs stay readable.
func (ws *workspaceCtx) runStore() *runstore.JSONStore {
	cfg, err := config.LoadConfig(ws.configPath)
	if err != nil {
		ws.log.Warn("config.load.fallback", "path", ws.configPath, "error", err.Error())
		cfg = domain.DefaultConfig()
	}
	return runstore.NewJSONStore(ws.root, cfg)
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `thermosweep init`): %w", wd, err)
	}
	return root, nil
}
