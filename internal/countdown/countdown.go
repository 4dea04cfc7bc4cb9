// Package countdown provides a tick-driven countdown bound to a game clock.
package countdown

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/keyrush/internal/model"
)

var (
	// ErrDoubleStart is returned when Start or Resume is called on a running timer.
	ErrDoubleStart = errors.New("countdown already running")
	// ErrNothingToResume is returned by Resume when no countdown is suspended.
	ErrNothingToResume = errors.New("no suspended countdown")
)

// Dispatcher runs callbacks on the thread that owns game state.
type Dispatcher interface {
	Post(fn func())
}

// StateSource delivers game state changes in order.
type StateSource interface {
	Subscribe(fn func(model.StateChange)) (unsubscribe func())
}

// Option configures a Timer.
type Option func(*Timer)

// WithName labels the timer in log output.
func WithName(name string) Option {
	return func(t *Timer) {
		t.name = name
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Timer) {
		t.log = logger
	}
}

// Timer counts down whole ticks. It is not safe for concurrent use: every
// method must be called from the dispatcher thread, which is also where
// ticks and completion callbacks run.
type Timer struct {
	clock    clockwork.Clock
	interval time.Duration
	dispatch Dispatcher
	name     string
	log      zerolog.Logger

	remaining int
	running   bool
	gen       uint64
	pending   clockwork.Timer
	current   *Completion

	tickFns     []func(remaining int)
	completeFns []func()
}

// New returns a stopped Timer that ticks every interval on clock.
func New(clock clockwork.Clock, interval time.Duration, dispatch Dispatcher, opts ...Option) *Timer {
	t := &Timer{
		clock:    clock,
		interval: interval,
		dispatch: dispatch,
		name:     "countdown",
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("timer", t.name).Logger()
	return t
}

// OnTick registers fn to receive every published remaining value.
func (t *Timer) OnTick(fn func(remaining int)) {
	t.tickFns = append(t.tickFns, fn)
}

// OnComplete registers fn to run each time a countdown reaches zero.
func (t *Timer) OnComplete(fn func()) {
	t.completeFns = append(t.completeFns, fn)
}

// Remaining reports the last published remaining value.
func (t *Timer) Remaining() int {
	return t.remaining
}

// Running reports whether ticks are scheduled.
func (t *Timer) Running() bool {
	return t.running
}

// Suspended reports whether a cancelled countdown can be resumed.
func (t *Timer) Suspended() bool {
	return !t.running && t.current != nil && !t.current.Resolved() && t.remaining > 0
}

// Start begins counting down from duration. The initial value is published
// immediately, then one decrement per interval; the completion resolves
// when zero is published. A zero duration resolves before Start returns.
func (t *Timer) Start(duration int) (*Completion, error) {
	if t.running {
		return nil, fmt.Errorf("start %s: %w", t.name, ErrDoubleStart)
	}
	if duration < 0 {
		return nil, fmt.Errorf("start %s: negative duration %d", t.name, duration)
	}
	c := newCompletion()
	t.gen++
	t.current = c
	t.remaining = duration
	t.running = true
	t.log.Debug().Int("duration", duration).Msg("countdown started")
	t.advanceFrom(t.gen)
	return c, nil
}

// Resume continues a cancelled countdown from Remaining.
func (t *Timer) Resume() error {
	if t.running {
		return fmt.Errorf("resume %s: %w", t.name, ErrDoubleStart)
	}
	if !t.Suspended() {
		return fmt.Errorf("resume %s: %w", t.name, ErrNothingToResume)
	}
	t.gen++
	t.running = true
	t.log.Debug().Int("remaining", t.remaining).Msg("countdown resumed")
	t.advanceFrom(t.gen)
	return nil
}

// Cancel stops ticking without resolving the completion. Remaining keeps
// its value so the countdown can be resumed. Cancel is idempotent.
func (t *Timer) Cancel() {
	if !t.running {
		return
	}
	t.running = false
	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.log.Debug().Int("remaining", t.remaining).Msg("countdown cancelled")
}

// TrackState binds the countdown to game state: entering InProgress resumes
// a suspended countdown or starts a new one of duration, any other state
// cancels it.
func (t *Timer) TrackState(src StateSource, duration int) (untrack func()) {
	return src.Subscribe(func(change model.StateChange) {
		if change.To != model.InProgress {
			t.Cancel()
			return
		}
		var err error
		if t.Suspended() {
			err = t.Resume()
		} else {
			_, err = t.Start(duration)
		}
		if err != nil {
			t.log.Error().Err(err).Stringer("state", change.To).Msg("countdown could not follow state")
			panic(err)
		}
	})
}

// advanceFrom publishes the current value and either completes or schedules
// the next tick, unless a listener stopped this run.
func (t *Timer) advanceFrom(gen uint64) {
	t.publish()
	if !t.running || gen != t.gen {
		return
	}
	if t.remaining <= 0 {
		t.complete()
		return
	}
	t.pending = t.clock.AfterFunc(t.interval, func() {
		t.dispatch.Post(func() { t.tick(gen) })
	})
}

func (t *Timer) tick(gen uint64) {
	if !t.running || gen != t.gen {
		t.log.Debug().Uint64("gen", gen).Msg("dropped stale tick")
		return
	}
	t.pending = nil
	t.remaining--
	t.advanceFrom(gen)
}

func (t *Timer) publish() {
	for _, fn := range t.tickFns {
		fn(t.remaining)
	}
}

func (t *Timer) complete() {
	t.running = false
	t.pending = nil
	t.log.Debug().Msg("countdown completed")
	t.current.resolve()
	for _, fn := range t.completeFns {
		fn()
	}
}

// Completion resolves exactly once when a countdown reaches zero.
type Completion struct {
	done     chan struct{}
	resolved bool
	thens    []func()
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Done is closed on resolution.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Resolved reports whether the countdown reached zero.
func (c *Completion) Resolved() bool {
	return c.resolved
}

// Then runs fn on resolution, or immediately if already resolved.
func (c *Completion) Then(fn func()) {
	if c.resolved {
		fn()
		return
	}
	c.thens = append(c.thens, fn)
}

func (c *Completion) resolve() {
	if c.resolved {
		return
	}
	c.resolved = true
	close(c.done)
	thens := c.thens
	c.thens = nil
	for _, fn := range thens {
		fn()
	}
}
