package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestDispatcherRunsCallbacksInUpdate(t *testing.T) {
	m := NewModel(DefaultLayout)
	p := tea.NewProgram(m, tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutRenderer())
	d := NewDispatcher()

	// Posted before the forwarder starts; must still be delivered.
	ran := make(chan struct{})
	d.Post(func() {
		m.ShowGuidance("from timer", "")
		close(ran)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx, p) }()
	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("posted callback never ran")
	}
	p.Quit()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("program: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("program did not quit")
	}
	if m.guideTitle != "from timer" {
		t.Fatalf("expected guidance from callback, got %q", m.guideTitle)
	}
}
