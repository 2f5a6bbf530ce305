package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/reactorsim/internal/experiment"
)

func TestProgress(t *testing.T) {
	p := NewProgress(100, 300)
	if p.Fraction() != 0 {
		t.Errorf("fraction at start = %g", p.Fraction())
	}
	p.OnStep(200, nil)
	p.OnStep(250, nil)
	if p.Fraction() != 0.75 || p.Steps() != 2 || p.Time() != 250 {
		t.Errorf("fraction %g, steps %d, t %g", p.Fraction(), p.Steps(), p.Time())
	}
	p.OnStep(400, nil)
	if p.Fraction() != 1 {
		t.Error("fraction must be clamped")
	}
	if NewProgress(1, 1).Fraction() != 1 {
		t.Error("empty span is complete")
	}
}

func TestModelCancel(t *testing.T) {
	var seen context.Context
	m := NewModel(context.Background(), "run", NewProgress(0, 10), func(ctx context.Context) (*experiment.Outcome, error) {
		seen = ctx
		return nil, nil
	})
	m.run(m.ctx)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		t.Error("cancel must wait for the run to return")
	}
	if !next.(Model).canceled {
		t.Error("model should be canceling")
	}
	if !errors.Is(seen.Err(), context.Canceled) {
		t.Error("run context must be canceled")
	}
	if !strings.Contains(next.View(), "canceling") {
		t.Error("view should show the cancellation")
	}
}

func TestModelDone(t *testing.T) {
	m := NewModel(context.Background(), "run", NewProgress(0, 10), nil)
	want := &experiment.Outcome{Status: experiment.Converged}

	next, cmd := m.Update(doneMsg{out: want})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	out, err := next.(Model).Result()
	if out != want || err != nil {
		t.Error("result not kept")
	}

	if _, cmd := next.Update(tickMsg{}); cmd != nil {
		t.Error("no more ticks after the run finished")
	}
}

func TestTable(t *testing.T) {
	s := Table([]string{"ID", "STATUS"}, [][]string{{"lab_1", "converged"}})
	if !strings.Contains(s, "lab_1") || !strings.Contains(s, "STATUS") {
		t.Errorf("table missing content:\n%s", s)
	}
}
