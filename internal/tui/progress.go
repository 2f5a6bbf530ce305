// Package tui shows run progress in the terminal and styles CLI output.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/experiment"
)

const refresh = 100 * time.Millisecond

// Progress is a solver observer that records how far a run has come. It is
// written by the solver goroutine and read by the view.
type Progress struct {
	t0, t1 float64
	now    atomic.Uint64
	steps  atomic.Int64
}

func NewProgress(t0, t1 float64) *Progress {
	p := &Progress{t0: t0, t1: t1}
	p.now.Store(math.Float64bits(t0))
	return p
}

func (p *Progress) OnStep(t float64, x dynamo.State) {
	p.now.Store(math.Float64bits(t))
	p.steps.Add(1)
}

func (p *Progress) Time() float64 { return math.Float64frombits(p.now.Load()) }

func (p *Progress) Steps() int64 { return p.steps.Load() }

// Fraction is the completed share of the span, clamped to [0, 1].
func (p *Progress) Fraction() float64 {
	if p.t1 <= p.t0 {
		return 1
	}
	f := (p.Time() - p.t0) / (p.t1 - p.t0)
	return math.Max(0, math.Min(1, f))
}

type tickMsg time.Time

type doneMsg struct {
	out *experiment.Outcome
	err error
}

// RunFunc performs the run under the given context.
type RunFunc func(ctx context.Context) (*experiment.Outcome, error)

type Model struct {
	title    string
	progress *Progress
	run      RunFunc
	ctx      context.Context
	cancel   context.CancelFunc

	start    time.Time
	width    int
	canceled bool
	done     bool
	out      *experiment.Outcome
	err      error
}

func NewModel(ctx context.Context, title string, p *Progress, run RunFunc) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		title:    title,
		progress: p,
		run:      run,
		ctx:      ctx,
		cancel:   cancel,
		start:    time.Now(),
		width:    60,
	}
}

func tick() tea.Cmd {
	return tea.Tick(refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), func() tea.Msg {
		out, err := m.run(m.ctx)
		return doneMsg{out: out, err: err}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The solver notices at its next step and returns a failed outcome.
			m.canceled = true
			m.cancel()
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = max(20, msg.Width-20)
		return m, nil
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tick()
	case doneMsg:
		m.done = true
		m.out, m.err = msg.out, msg.err
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) bar() string {
	f := m.progress.Fraction()
	full := int(f * float64(m.width))
	return barFull.Render(strings.Repeat("█", full)) +
		barEmpty.Render(strings.Repeat("░", m.width-full))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(Title.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.bar())
	fmt.Fprintf(&b, " %5.1f%%\n\n", 100*m.progress.Fraction())

	b.WriteString(KeyValues([][2]string{
		{"t", fmt.Sprintf("%.0f / %.0f s", m.progress.Time(), m.progress.t1)},
		{"steps", fmt.Sprintf("%d", m.progress.Steps())},
		{"elapsed", time.Since(m.start).Round(100 * time.Millisecond).String()},
	}))
	b.WriteString("\n\n")

	switch {
	case m.done:
		b.WriteString(Subtle.Render("finished"))
	case m.canceled:
		b.WriteString(StatusFailed.Render("canceling..."))
	default:
		b.WriteString(KeyHint.Render("q: cancel"))
	}
	b.WriteString("\n")
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Result returns what the run produced once the program has quit.
func (m Model) Result() (*experiment.Outcome, error) {
	return m.out, m.err
}

// Run executes run behind a progress view until it finishes or the user
// cancels it.
func Run(ctx context.Context, title string, p *Progress, run RunFunc) (*experiment.Outcome, error) {
	final, err := tea.NewProgram(NewModel(ctx, title, p, run)).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Result()
}
