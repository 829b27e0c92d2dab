package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// newWorkspace initializes a workspace whose sweep is two hex items.
func newWorkspace(t *testing.T, replacements ...string) string {
	t.Helper()

	dir := t.TempDir()
	if _, err := executeCmd(t, "init", dir); err != nil {
		t.Fatalf("init: %v", err)
	}

	cfgPath := filepath.Join(dir, "configThermo.yaml")
	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	s := strings.Replace(string(b), "widths: [3000, 3500, 4000, 4500, 5000, 5500]", "widths: [3000, 3500]", 1)
	for i := 0; i+1 < len(replacements); i += 2 {
		s = strings.Replace(s, replacements[i], replacements[i+1], 1)
	}
	if err := os.WriteFile(cfgPath, []byte(s), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveWorkspaceRoot_Flag(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveWorkspaceRoot(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %q, got %q", dir, got)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), exitError},
		{"invalid config", &domain.OpError{Op: "config.validate", Kind: domain.KindInvalidConfig, Err: domain.ErrInvalidConfig}, exitInvalidConfig},
		{"canceled ctx", fmt.Errorf("hex_3000: %w", context.Canceled), exitCanceled},
		{"solver", &domain.OpError{Op: "ccx.run", Kind: domain.KindSolver, Err: domain.ErrSolver}, exitError},
		{"tool timeout", fmt.Errorf("hex_3000: %w", &domain.OpError{
			Op:   "procexec.timeout",
			Kind: domain.KindExecution,
			Err:  fmt.Errorf("ccx timed out after 1s: %w", context.DeadlineExceeded),
		}), exitError},
		{"bare deadline", context.DeadlineExceeded, exitError},
	}
	for _, c := range cases {
		if got := exitCode(c.err); got != c.want {
			t.Errorf("%s: exitCode = %d, want %d", c.name, got, c.want)
		}
	}
}

func sampleRun() domain.SweepRun {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return domain.SweepRun{
		ConfigPath: "/ws/configThermo.yaml",
		StartedAt:  start,
		EndedAt:    start.Add(90 * time.Second),
		Items: []domain.ItemResult{
			{
				Name:   "hex_3000",
				Status: domain.ItemSolved,
				Timings: domain.StageTimings{
					Mesh:  2 * time.Second,
					Solve: 80 * time.Second,
					Total: 85 * time.Second,
				},
				Result: &domain.ResultSummary{FinalTime: 3600, MaxTemperature: 351.25, MinTemperature: 300, NodeCount: 42},
			},
			{
				Name:   "hex_3500",
				Status: domain.ItemMeshFailed,
				Error:  &domain.RunError{Kind: domain.KindMesh, Message: "gmsh: No elements in volume 1"},
			},
		},
	}
}

func TestPrintRun_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, sampleRun(), "20260102T030405Z_configthermo", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		RunID string          `json:"run_id"`
		Run   domain.SweepRun `json:"run"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if payload.RunID != "20260102T030405Z_configthermo" {
		t.Fatalf("unexpected run_id %q", payload.RunID)
	}
	if len(payload.Run.Items) != 2 || payload.Run.Items[1].Status != domain.ItemMeshFailed {
		t.Fatalf("unexpected items: %+v", payload.Run.Items)
	}
}

func TestPrintRun_UnsupportedFormat(t *testing.T) {
	if err := printRun(&bytes.Buffer{}, sampleRun(), "", "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestPrintPrettyRun(t *testing.T) {
	var buf bytes.Buffer
	printPrettyRun(&buf, sampleRun(), "abc")
	out := buf.String()

	for _, want := range []string{
		"Run ID:     abc",
		"- [SOLVED] hex_3000  mesh 2.00s, solve 80.00s, total 85.00s",
		"max 351.25 K",
		"- [MESH_FAILED] hex_3500",
		"error: gmsh: No elements in volume 1 (mesh)",
		"2 item(s): 1 solved, 0 skipped, 1 mesh failed, 0 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleObserver(t *testing.T) {
	var buf bytes.Buffer
	o := newConsoleObserver(&buf)
	it := domain.SweepItem{Shape: domain.ShapeHex, Width: 3000}

	o.ItemStarted(0, 1, it)
	o.StageStarted(it, domain.StageMesh)
	o.Info(it, "Using old mesh")
	o.Info(it, "Mesh generated in 1.50 [s]")
	o.StageStarted(it, domain.StageSolve)
	o.Info(it, "ccx found, mesh and constraints complete")
	o.Info(it, "FEA solved in 0.75 [s]")
	o.ItemFinished(0, 1, domain.ItemResult{Name: "hex_3000", Status: domain.ItemSolved, Timings: domain.StageTimings{Total: 2500 * time.Millisecond}})
	o.ItemFinished(0, 1, domain.ItemResult{Name: "hex_3000", Status: domain.ItemMeshFailed, Error: &domain.RunError{Kind: domain.KindMesh, Message: "bad surface"}})

	want := strings.Repeat("―", 70) + "| RUNNING hex_3000 |\n" +
		"[INFO]: Using old mesh\n" +
		"[INFO]: Mesh generated in 1.50 [s]\n" +
		"[INFO]: ccx found, mesh and constraints complete\n" +
		"[INFO]: FEA solved in 0.75 [s]\n" +
		"[INFO]: Completed in 2.50 [s]\n" +
		"[Error]: bad surface\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("console output mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintPlan(t *testing.T) {
	plan := []domain.ItemPlan{
		{Name: "hex_3000", GeometryExists: true, DocumentExists: true, WillSkip: true},
		{Name: "hex_3500", GeometryExists: true, MeshExists: true, WillReuseMesh: true},
		{Name: "hex_4000"},
	}
	var buf bytes.Buffer
	if err := printPlan(&buf, plan, "pretty"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	for i, action := range []string{"skip", "solve", "mesh+solve"} {
		if f := strings.Fields(lines[i+1]); f[1] != action {
			t.Errorf("line %d: expected action %q, got %q", i+1, action, f[1])
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCmd(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "thermosweep ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInitCmd_CreatesWorkspace(t *testing.T) {
	dir := t.TempDir()
	out, err := executeCmd(t, "init", dir)
	require.NoError(t, err)
	require.Contains(t, out, "Initialized thermosweep workspace")

	for _, p := range []string{"configThermo.yaml", "files", "runs", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, p))
		require.NoError(t, err, "expected %s", p)
	}
}

func TestPlanCmd_JSON(t *testing.T) {
	dir := newWorkspace(t)
	writeFile(t, filepath.Join(dir, "files", "hex_3000", "hex_3000.step"), "ISO-10303-21;")

	out, err := executeCmd(t, "plan", "-w", dir, "--format", "json")
	require.NoError(t, err)

	var plan []domain.ItemPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan), out)

	got := make([]bool, 0, len(plan))
	for _, p := range plan {
		got = append(got, p.GeometryExists)
	}
	if diff := cmp.Diff([]bool{true, false}, got); diff != "" {
		t.Fatalf("geometry flags mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateCmd_MissingToolsAndGeometry(t *testing.T) {
	dir := newWorkspace(t,
		"gmsh: gmsh", "gmsh: thermosweep-no-such-gmsh",
		"ccx: ccx", "ccx: thermosweep-no-such-ccx",
	)

	out, err := executeCmd(t, "validate", "-w", dir)
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindInvalidConfig), "expected invalid_config, got %v", err)
	require.Equal(t, exitInvalidConfig, exitCode(err))

	for _, want := range []string{"hex_3000: geometry not found", "thermosweep-no-such-gmsh", "thermosweep-no-such-ccx"} {
		require.Contains(t, out, want)
	}
}

func TestRunCmd_SkipsExistingAndStoresRun(t *testing.T) {
	dir := newWorkspace(t, "useExistingFiles: false", "useExistingFiles: true")
	for _, n := range []string{"hex_3000", "hex_3500"} {
		writeFile(t, filepath.Join(dir, "files", n, n+"_therm.json"), `{"name":"`+n+`"}`)
	}

	out, err := executeCmd(t, "run", "-w", dir, "--format", "json")
	require.NoError(t, err, out)

	var payload struct {
		RunID string          `json:"run_id"`
		Run   domain.SweepRun `json:"run"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload), out)
	require.NotEmpty(t, payload.RunID)
	require.Equal(t, 2, payload.Run.Count(domain.ItemSkipped))

	list, err := executeCmd(t, "runs", "list", "-w", dir)
	require.NoError(t, err)
	require.Contains(t, list, payload.RunID)
	require.Contains(t, list, "0/2 solved")

	status, err := executeCmd(t, "runs", "show", payload.RunID, "-w", dir, "--query", "$.items[1].status")
	require.NoError(t, err)
	require.Equal(t, "skipped", strings.TrimSpace(status))
}

func TestRunCmd_PrettyProgress(t *testing.T) {
	dir := newWorkspace(t, "useExistingFiles: false", "useExistingFiles: true")
	for _, n := range []string{"hex_3000", "hex_3500"} {
		writeFile(t, filepath.Join(dir, "files", n, n+"_therm.json"), "{}")
	}

	out, err := executeCmd(t, "run", "-w", dir, "--no-save")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(out, "[INFO]: Skipped file generation, using existing analysis document"), out)
	for _, n := range []string{"hex_3000", "hex_3500"} {
		require.Contains(t, out, strings.Repeat("―", 70)+"| RUNNING "+n+" |\n", "banner must be a single line")
	}
	require.NotContains(t, out, "Run ID:", "--no-save must not store a run")

	entries, err := os.ReadDir(filepath.Join(dir, "runs"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunCmd_MissingGeometryAborts(t *testing.T) {
	dir := newWorkspace(t)

	out, err := executeCmd(t, "run", "-w", dir, "--format", "json")
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindNotFound), "expected not_found, got %v", err)
	require.Contains(t, out, `"stopped": "error"`, "partial run should still be printed")
}

func TestRunCmd_CorruptDocumentIsNotSkipped(t *testing.T) {
	dir := newWorkspace(t, "useExistingFiles: false", "useExistingFiles: true")
	writeFile(t, filepath.Join(dir, "files", "hex_3000", "hex_3000_therm.json"), "not json")

	out, err := executeCmd(t, "run", "-w", dir, "--format", "json")
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindNotFound), "expected regeneration to need geometry, got %v", err)
	require.NotContains(t, out, `"status": "skipped"`)
}

func TestRunCmd_RejectsUnknownFormat(t *testing.T) {
	dir := newWorkspace(t)
	_, err := executeCmd(t, "run", "-w", dir, "--format", "xml")
	require.ErrorContains(t, err, "unsupported format")
}

func TestRunsShow_UnknownRun(t *testing.T) {
	dir := newWorkspace(t)
	_, err := executeCmd(t, "runs", "show", "nope", "-w", dir)
	require.True(t, domain.IsKind(err, domain.KindNotFound), "expected not_found, got %v", err)
}
