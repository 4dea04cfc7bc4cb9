package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keyrush/internal/loop"
)

type dispatchMsg func()

// Dispatcher runs posted callbacks inside the program's Update loop, so
// they are serialized with input handling. Timer goroutines only enqueue;
// a single forwarder hands callbacks to the program in post order.
type Dispatcher struct {
	queue   *loop.Loop
	program *tea.Program
}

// NewDispatcher returns a dispatcher with the default queue size.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{queue: loop.New(0)}
}

// Post implements countdown.Dispatcher.
func (d *Dispatcher) Post(fn func()) {
	if fn == nil {
		return
	}
	d.queue.Post(func() {
		d.program.Send(dispatchMsg(fn))
	})
}

// Run forwards callbacks to p until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, p *tea.Program) error {
	d.program = p
	return d.queue.Run(ctx)
}
