package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

var hex3000 = domain.SweepItem{Shape: domain.ShapeHex, Width: 3000}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(model)
	if !ok {
		t.Fatalf("expected model, got %T", next)
	}
	return mm, cmd
}

func TestModel_ProgressThroughSweep(t *testing.T) {
	m := newModel(Deps{Title: "configThermo.yaml"}, 2, nil, nil, nil)

	m, _ = update(t, m, itemStartedMsg{index: 0, total: 2, item: hex3000})
	m, _ = update(t, m, stageStartedMsg{item: hex3000, stage: domain.StageMesh})
	if m.current != "hex_3000" || m.stage != domain.StageMesh {
		t.Fatalf("unexpected current state: %q %q", m.current, m.stage)
	}
	if !strings.Contains(m.View(), "hex_3000") {
		t.Fatalf("view should show the current item:\n%s", m.View())
	}

	m, _ = update(t, m, infoMsg{item: hex3000, text: "Mesh generated in 1.00 [s]"})
	m, _ = update(t, m, itemFinishedMsg{index: 0, total: 2, result: domain.ItemResult{
		Name:    "hex_3000",
		Status:  domain.ItemSolved,
		Timings: domain.StageTimings{Mesh: time.Second, Solve: 2 * time.Second, Total: 3 * time.Second},
		Result:  &domain.ResultSummary{MaxTemperature: 350.5},
	}})

	if m.finished != 1 || m.current != "" {
		t.Fatalf("unexpected state after finish: finished=%d current=%q", m.finished, m.current)
	}
	if got := m.percent(); got != 0.5 {
		t.Fatalf("expected 50%%, got %v", got)
	}
	view := m.View()
	for _, want := range []string{"Mesh generated in 1.00 [s]", "solved", "Tmax 350.50 K", "1/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	run := domain.SweepRun{Items: []domain.ItemResult{{Name: "hex_3000"}}}
	m, cmd := update(t, m, sweepDoneMsg{run: run, id: "r1"})
	if !m.done || m.result.id != "r1" {
		t.Fatalf("expected done with id r1, got %+v", m.result)
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestModel_CtrlCCancelsOnce(t *testing.T) {
	calls := 0
	m := newModel(Deps{}, 1, nil, nil, func() { calls++ })

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	if calls != 1 {
		t.Fatalf("expected cancel once, got %d", calls)
	}
	if !m.canceling {
		t.Fatal("expected canceling state")
	}
	if m.done {
		t.Fatal("must wait for the sweep to report before quitting")
	}
}

func TestModel_ScrollbackIsBounded(t *testing.T) {
	m := newModel(Deps{}, 1, nil, nil, nil)
	for i := 0; i < maxLines+10; i++ {
		m.push("line")
	}
	if len(m.lines) != maxLines {
		t.Fatalf("expected %d lines, got %d", maxLines, len(m.lines))
	}
}

func TestFinalResult(t *testing.T) {
	m := newModel(Deps{}, 1, nil, nil, nil)
	if _, ok := finalResult(wrapSafe(m, nil)); ok {
		t.Fatal("unfinished model must not report a result")
	}

	m.done = true
	m.result = sweepDoneMsg{id: "r2"}
	res, ok := finalResult(wrapSafe(m, nil))
	if !ok || res.id != "r2" {
		t.Fatalf("unexpected result %+v ok=%v", res, ok)
	}
}

func TestSafeModel_DelegatesUpdate(t *testing.T) {
	s := wrapSafe(newModel(Deps{}, 2, nil, nil, nil), nil)

	next, _ := s.Update(itemStartedMsg{index: 0, total: 3, item: hex3000})
	sm, ok := next.(safeModel)
	if !ok {
		t.Fatalf("expected safeModel, got %T", next)
	}
	if sm.m.total != 3 || sm.m.current != "hex_3000" {
		t.Fatalf("inner model not updated: %+v", sm.m)
	}
}

func TestChannelObserver_SendsInOrder(t *testing.T) {
	ch := make(chan tea.Msg, 4)
	var obs ports.SweepObserver = channelObserver{ch: ch}

	obs.ItemStarted(0, 1, hex3000)
	obs.StageStarted(hex3000, domain.StageSolve)
	obs.Info(hex3000, "hello")
	obs.ItemFinished(0, 1, domain.ItemResult{Name: "hex_3000", Status: domain.ItemSkipped})

	if _, ok := (<-ch).(itemStartedMsg); !ok {
		t.Fatal("expected itemStartedMsg")
	}
	if m, ok := (<-ch).(stageStartedMsg); !ok || m.stage != domain.StageSolve {
		t.Fatal("expected stageStartedMsg(solve)")
	}
	if m, ok := (<-ch).(infoMsg); !ok || m.text != "hello" {
		t.Fatal("expected infoMsg(hello)")
	}
	if m, ok := (<-ch).(itemFinishedMsg); !ok || m.result.Status != domain.ItemSkipped {
		t.Fatal("expected itemFinishedMsg(skipped)")
	}
}

func TestStartSweepAsync_EndsWithDone(t *testing.T) {
	boom := errors.New("boom")
	run := func(_ context.Context, obs ports.SweepObserver) (domain.SweepRun, string, error) {
		obs.Info(hex3000, "working")
		return domain.SweepRun{Stopped: "error"}, "r3", boom
	}

	ch, listen := startSweepAsync(context.Background(), run, nil)

	if m, ok := listen().(infoMsg); !ok || m.text != "working" {
		t.Fatal("expected infoMsg first")
	}
	done, ok := listenSweep(ch)().(sweepDoneMsg)
	if !ok {
		t.Fatal("expected sweepDoneMsg")
	}
	if !errors.Is(done.err, boom) || done.id != "r3" || done.run.Stopped != "error" {
		t.Fatalf("unexpected done message %+v", done)
	}
	if _, open := <-ch; open {
		t.Fatal("channel should be closed after the sweep")
	}
}

func TestRenderItemLine(t *testing.T) {
	th := DefaultTheme()

	reused := renderItemLine(th, domain.ItemResult{Name: "hex_4000", Status: domain.ItemSolved, MeshReused: true})
	if !strings.Contains(reused, "mesh reused") {
		t.Errorf("expected mesh reused in %q", reused)
	}

	failed := renderItemLine(th, domain.ItemResult{
		Name:   "hex_4500",
		Status: domain.ItemMeshFailed,
		Error:  &domain.RunError{Kind: domain.KindMesh, Message: "gmsh: Error : surface 12 failed"},
	})
	if !strings.Contains(failed, "mesh failed") || !strings.Contains(failed, "surface 12 failed") {
		t.Errorf("unexpected line %q", failed)
	}
}

func TestClampString(t *testing.T) {
	if got := clampString("héllo world", 5); got != "héllo…" {
		t.Fatalf("unexpected %q", got)
	}
	if got := clampString("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := clampString("x", 0); got != "" {
		t.Fatalf("unexpected %q", got)
	}
}
