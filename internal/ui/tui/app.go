package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// maxLines bounds the scrollback of finished items and notices.
const maxLines = 200

type model struct {
	theme Theme
	deps  Deps

	progress progress.Model
	spinner  spinner.Model
	width    int

	ch     <-chan tea.Msg
	listen tea.Cmd
	cancel context.CancelFunc

	total    int
	finished int
	current  string
	stage    domain.Stage
	lines    []string

	canceling bool
	done      bool
	result    sweepDoneMsg
}

// Run shows a live progress view while run executes and returns its
// outcome once it finishes. Ctrl+C cancels the sweep and waits for it.
func Run(ctx context.Context, deps Deps, total int, run SweepFunc) (domain.SweepRun, string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, listen := startSweepAsync(ctx, run, deps.Logger)
	m := newModel(deps, total, ch, listen, cancel)

	p := tea.NewProgram(wrapSafe(m, deps.Logger))
	final, err := p.Run()

	res, ok := finalResult(final)
	if !ok {
		// the view ended early; stop the sweep and wait for its result
		cancel()
		for msg := range ch {
			if d, isDone := msg.(sweepDoneMsg); isDone {
				res = d
			}
		}
	}
	if err != nil && res.err == nil {
		return res.run, res.id, fmt.Errorf("tui: %w", err)
	}
	return res.run, res.id, res.err
}

func finalResult(m tea.Model) (sweepDoneMsg, bool) {
	switch v := m.(type) {
	case safeModel:
		return v.m.result, v.m.done
	case model:
		return v.result, v.done
	}
	return sweepDoneMsg{}, false
}

func newModel(deps Deps, total int, ch <-chan tea.Msg, listen tea.Cmd, cancel context.CancelFunc) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		theme:    DefaultTheme(),
		deps:     deps,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner:  sp,
		ch:       ch,
		listen:   listen,
		cancel:   cancel,
		total:    total,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, min(60, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.canceling && m.cancel != nil {
				m.canceling = true
				m.cancel()
				m.push(m.theme.Warn.Render("Canceling, waiting for the current tool to stop..."))
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case itemStartedMsg:
		m.total = msg.total
		m.current = msg.item.Name()
		m.stage = ""
		return m, m.next()

	case stageStartedMsg:
		m.stage = msg.stage
		return m, m.next()

	case infoMsg:
		m.push(fmt.Sprintf("  %s %s", m.theme.Subtitle.Render(msg.item.Name()), msg.text))
		return m, m.next()

	case itemFinishedMsg:
		m.finished = msg.index + 1
		m.current = ""
		m.stage = ""
		m.push(renderItemLine(m.theme, msg.result))
		return m, m.next()

	case sweepDoneMsg:
		m.done = true
		m.result = msg
		return m, tea.Quit
	}

	return m, nil
}

func (m model) next() tea.Cmd {
	if m.ch == nil {
		return nil
	}
	return listenSweep(m.ch)
}

func (m *model) push(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

func (m model) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.finished) / float64(m.total)
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("thermosweep"))
	if m.deps.Title != "" {
		b.WriteString("  ")
		b.WriteString(m.theme.Subtitle.Render(m.deps.Title))
	}
	b.WriteString("\n\n")

	for _, l := range m.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if len(m.lines) > 0 {
		b.WriteByte('\n')
	}

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString(fmt.Sprintf("  %d/%d\n", m.finished, m.total))

	switch {
	case m.done:
		b.WriteString(m.theme.Subtitle.Render("done"))
	case m.current != "":
		stage := string(m.stage)
		if stage == "" {
			stage = "starting"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", m.spinner.View(), m.current, m.theme.Subtitle.Render(stage)))
	default:
		b.WriteString(m.spinner.View() + " waiting")
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render("q / ctrl+c cancel"))

	return wrap.Render(b.String())
}
