package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

// SweepFunc runs a sweep, reporting progress to obs.
type SweepFunc func(ctx context.Context, obs ports.SweepObserver) (domain.SweepRun, string, error)

// channelObserver turns sweep events into tea messages.
type channelObserver struct {
	ch chan<- tea.Msg
}

func (o channelObserver) ItemStarted(index, total int, it domain.SweepItem) {
	o.ch <- itemStartedMsg{index: index, total: total, item: it}
}

func (o channelObserver) StageStarted(it domain.SweepItem, stage domain.Stage) {
	o.ch <- stageStartedMsg{item: it, stage: stage}
}

func (o channelObserver) Info(it domain.SweepItem, msg string) {
	o.ch <- infoMsg{item: it, text: msg}
}

func (o channelObserver) ItemFinished(index, total int, res domain.ItemResult) {
	o.ch <- itemFinishedMsg{index: index, total: total, result: res}
}

var _ ports.SweepObserver = channelObserver{}

func listenSweep(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func startSweepAsync(ctx context.Context, run SweepFunc, log *slog.Logger) (chan tea.Msg, tea.Cmd) {
	ch := make(chan tea.Msg, 64)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		out, id, err := run(ctx, channelObserver{ch: ch})
		if err != nil {
			log.Error("tui.sweep.failed", "err", err, "saved_id", id)
		} else {
			log.Info("tui.sweep.ok", "saved_id", id)
		}
		ch <- sweepDoneMsg{run: out, id: id, err: err}
	}()

	return ch, listenSweep(ch)
}
