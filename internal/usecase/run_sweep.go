package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

// StopFirstOnly is recorded in SweepRun.Stopped when runFirstOnly ends the
// sweep after its first solved item.
const StopFirstOnly = "runFirstOnly"

// RunSweep processes the sweep items one at a time: document, mesh, solve,
// save. A mesh error skips the item; any other error ends the sweep.
type RunSweep struct {
	layout   ports.ArtifactLayout
	docs     ports.DocumentStore
	mesher   ports.Mesher
	meshes   ports.MeshReader
	solver   ports.Solver
	store    ports.RunStore
	observer ports.SweepObserver
	log      *slog.Logger
	now      func() time.Time
}

type RunSweepOption func(*RunSweep)

func WithObserver(o ports.SweepObserver) RunSweepOption {
	return func(uc *RunSweep) {
		if o != nil {
			uc.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) RunSweepOption {
	return func(uc *RunSweep) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) RunSweepOption {
	return func(uc *RunSweep) { uc.now = now }
}

// NewRunSweep wires the sweep. store may be nil to skip persisting the run.
func NewRunSweep(
	layout ports.ArtifactLayout,
	docs ports.DocumentStore,
	mesher ports.Mesher,
	meshes ports.MeshReader,
	solver ports.Solver,
	store ports.RunStore,
	opts ...RunSweepOption,
) *RunSweep {
	uc := &RunSweep{
		layout:   layout,
		docs:     docs,
		mesher:   mesher,
		meshes:   meshes,
		solver:   solver,
		store:    store,
		observer: NopObserver{},
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs every item of cfg.Sweep. The returned run holds every item
// processed so far even when err is non-nil; it is persisted either way and
// its ID returned when a store is configured.
func (uc *RunSweep) Execute(ctx context.Context, cfg domain.Config, configPath string) (domain.SweepRun, string, error) {
	items := cfg.Sweep.Items()
	run := domain.SweepRun{
		ConfigPath: configPath,
		StartedAt:  uc.now(),
		Items:      make([]domain.ItemResult, 0, len(items)),
	}
	uc.log.Info("sweep.start", "config", configPath, "items", len(items))

	var runErr error
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			runErr = err
			run.Stopped = stoppedBy(err)
			break
		}

		uc.observer.ItemStarted(i, len(items), it)
		res, err := uc.runItem(ctx, cfg, it)
		run.Items = append(run.Items, res)
		uc.observer.ItemFinished(i, len(items), res)

		if err != nil {
			runErr = fmt.Errorf("%s: %w", it.Name(), err)
			run.Stopped = stoppedBy(err)
			uc.log.Error("sweep.abort", "item", it.Name(), "error", err.Error())
			break
		}
		if cfg.Run.RunFirstOnly && res.Status == domain.ItemSolved {
			run.Stopped = StopFirstOnly
			break
		}
	}

	run.EndedAt = uc.now()
	uc.log.Info("sweep.end",
		"items", len(run.Items),
		"solved", run.Count(domain.ItemSolved),
		"skipped", run.Count(domain.ItemSkipped),
		"mesh_failed", run.Count(domain.ItemMeshFailed),
		"stopped", run.Stopped,
		"duration_ms", run.Duration().Milliseconds(),
	)

	if uc.store == nil {
		return run, "", runErr
	}
	id, err := uc.store.SaveRun(run)
	if err != nil {
		uc.log.Error("run.save.failed", "config", configPath, "error", err.Error())
		if runErr != nil {
			return run, "", runErr
		}
		return run, "", err
	}
	run.ID = id
	return run, id, runErr
}

func (uc *RunSweep) runItem(ctx context.Context, cfg domain.Config, it domain.SweepItem) (domain.ItemResult, error) {
	start := uc.now()
	res := domain.ItemResult{Name: it.Name(), Item: it}
	log := uc.log.With("item", res.Name)

	fail := func(stage domain.Stage, err error) (domain.ItemResult, error) {
		res.Status = domain.ItemFailed
		res.Error = domain.NewRunError(err)
		res.Timings.Total = uc.now().Sub(start)
		log.Error("item.failed", "stage", string(stage), "error", err.Error())
		return res, err
	}

	docPath := uc.layout.DocumentPath(it)
	if cfg.Run.UseExistingFiles && uc.cachedDocument(docPath, log) {
		res.Status = domain.ItemSkipped
		res.Reason = "existing analysis document"
		res.Document = docPath
		res.Timings.Total = uc.now().Sub(start)
		uc.observer.Info(it, "Skipped file generation, using existing analysis document")
		log.Info("item.skipped", "document", docPath)
		return res, nil
	}

	uc.observer.StageStarted(it, domain.StageDocument)
	geom := uc.layout.GeometryPath(it)
	if !uc.layout.Exists(geom) {
		return fail(domain.StageDocument, &domain.OpError{
			Op:   "sweep.geometry",
			Kind: domain.KindNotFound,
			Path: geom,
			Err:  fmt.Errorf("geometry of %s: %w", res.Name, domain.ErrNotFound),
		})
	}
	a, err := domain.NewAnalysis(it, cfg, geom, uc.now())
	if err != nil {
		return fail(domain.StageDocument, err)
	}
	defer a.Close()

	uc.observer.StageStarted(it, domain.StageMesh)
	meshPath := uc.layout.MeshPath(it)
	meshStart := uc.now()
	reuse := cfg.Run.UseExistingMesh && uc.layout.Exists(meshPath)
	if !reuse {
		if err := uc.mesher.Mesh(ctx, a, uc.layout.MesherScriptPath(it), meshPath); err != nil {
			res.Timings.Mesh = uc.now().Sub(meshStart)
			if domain.IsMeshError(err) {
				res.Status = domain.ItemMeshFailed
				res.Error = domain.NewRunError(err)
				res.Timings.Total = uc.now().Sub(start)
				log.Warn("mesh.failed", "error", err.Error())
				return res, nil
			}
			return fail(domain.StageMesh, err)
		}
	}
	mesh, err := uc.meshes.ReadMesh(meshPath)
	if err != nil {
		return fail(domain.StageMesh, err)
	}
	if err := a.AttachMesh(meshPath, reuse); err != nil {
		return fail(domain.StageMesh, err)
	}
	res.MeshPath = meshPath
	res.MeshReused = reuse
	res.Timings.Mesh = uc.now().Sub(meshStart)
	if reuse {
		uc.observer.Info(it, "Using old mesh")
		log.Info("mesh.reused", "path", meshPath, "nodes", len(mesh.Nodes))
	} else {
		log.Info("mesh.done", "path", meshPath, "nodes", len(mesh.Nodes), "duration_ms", res.Timings.Mesh.Milliseconds())
	}
	uc.observer.Info(it, fmt.Sprintf("Mesh generated in %.2f [s]", res.Timings.Mesh.Seconds()))

	uc.observer.StageStarted(it, domain.StageSolve)
	workDir := uc.layout.SolverDir(it)
	if err := uc.solver.Purge(workDir); err != nil {
		return fail(domain.StageSolve, err)
	}
	report, err := uc.solver.CheckPrerequisites(a, mesh)
	if err != nil {
		return fail(domain.StageSolve, err)
	}
	res.Precheck = report
	log.Debug("solver.prerequisites", "report", report)

	solveStart := uc.now()
	summary, err := uc.solver.Solve(ctx, a, mesh, workDir)
	res.Timings.Solve = uc.now().Sub(solveStart)
	if err != nil {
		return fail(domain.StageSolve, err)
	}
	res.Result = &summary
	uc.observer.Info(it, report)
	uc.observer.Info(it, fmt.Sprintf("FEA solved in %.2f [s]", res.Timings.Solve.Seconds()))
	log.Info("solver.done",
		"duration_ms", res.Timings.Solve.Milliseconds(),
		"max_temperature", summary.MaxTemperature,
		"final_time", summary.FinalTime,
	)

	if cfg.Run.SaveDocument {
		uc.observer.StageStarted(it, domain.StageSave)
		if err := uc.docs.Save(docPath, a); err != nil {
			return fail(domain.StageSave, err)
		}
		res.Document = docPath
	}

	res.Status = domain.ItemSolved
	res.Timings.Total = uc.now().Sub(start)
	return res, nil
}

// cachedDocument reports whether a previous run left a readable analysis
// document at path. An unreadable one is regenerated.
func (uc *RunSweep) cachedDocument(path string, log *slog.Logger) bool {
	if !uc.layout.Exists(path) {
		return false
	}
	if _, err := uc.docs.Load(path); err != nil {
		log.Warn("item.document.invalid", "document", path, "error", err.Error())
		return false
	}
	return true
}

// stoppedBy names why a sweep ended early. Only a canceled context is a
// cancellation; tool timeouts and every other failure are errors.
func stoppedBy(err error) string {
	if domain.IsKind(err, domain.KindCanceled) {
		return "canceled"
	}
	return "error"
}
