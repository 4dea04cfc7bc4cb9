// Package loop serializes game events onto a single logical thread.
package loop

import "context"

const defaultBuffer = 64

// Loop is a FIFO of events run one at a time by Run.
type Loop struct {
	events chan func()
}

// New returns a Loop buffering up to size pending events.
func New(size int) *Loop {
	if size <= 0 {
		size = defaultBuffer
	}
	return &Loop{events: make(chan func(), size)}
}

// Post enqueues fn. It blocks when the buffer is full.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.events <- fn
}

// Events exposes the queue for callers that drive the loop themselves.
func (l *Loop) Events() <-chan func() {
	return l.events
}

// Run executes events in the order they were posted until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		}
	}
}

// Drain runs every event that is already queued and returns how many ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case fn := <-l.events:
			fn()
			n++
		default:
			return n
		}
	}
}
