package game

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/keyrush/internal/countdown"
	"github.com/verte-zerg/keyrush/internal/model"
	"github.com/verte-zerg/keyrush/internal/stats"
)

type listener struct {
	fn func(model.StateChange)
}

// Controller owns the game state machine. It is not safe for concurrent
// use; every method must run on the dispatcher thread.
type Controller struct {
	id      uuid.UUID
	cfg     model.Config
	tracker *Tracker
	view    View
	delay   *countdown.Timer
	clock   *countdown.Timer
	clk     clockwork.Clock
	log     zerolog.Logger

	state      model.State
	resumeFrom model.State
	started    bool
	reason     model.FinishReason
	samples    []float64

	// Active play time. Pauses and transition delays are not counted.
	played    time.Duration
	playStart time.Time

	listeners []*listener
	pending   []model.StateChange
	notifying bool
}

// New builds a game over words, renders the initial view and registers
// with the input source. The game waits for focus before starting.
func New(cfg model.Config, words []string, view View, input InputSource, clock clockwork.Clock, dispatch countdown.Dispatcher, logger zerolog.Logger) *Controller {
	id := uuid.New()
	c := &Controller{
		id:      id,
		cfg:     cfg,
		tracker: NewTracker(words),
		view:    view,
		clk:     clock,
		log:     logger.With().Str("game_id", id.String()).Logger(),
		state:   model.WaitingToStart,
	}
	c.delay = countdown.New(clock, cfg.TickInterval, dispatch,
		countdown.WithName("delay"), countdown.WithLogger(c.log))
	c.clock = countdown.New(clock, cfg.TickInterval, dispatch,
		countdown.WithName("game-clock"), countdown.WithLogger(c.log))

	c.delay.OnTick(func(remaining int) {
		c.view.ShowGuidance(strconv.Itoa(remaining), guideWait)
	})
	c.clock.OnTick(c.clockTick)
	c.clock.OnComplete(c.clockExpired)
	c.clock.TrackState(c, cfg.GameDuration)

	c.tracker.OnWordCompleted(c.wordCompleted)
	c.tracker.OnPassageCompleted(func() { c.finish(model.FinishPassageCompleted) })
	c.tracker.OnError(func(int) { c.view.UpdateScoreboard(c.Scoreboard()) })

	input.OnFocusGained(func() { c.report(c.FocusGained()) })
	input.OnFocusLost(func() { c.report(c.FocusLost()) })
	input.OnKeyPressed(func(key rune) { c.report(c.Keystroke(key)) })

	c.view.RenderPassage(c.tracker.Words())
	c.highlightCursor()
	delay := time.Duration(cfg.TransitionDelay) * cfg.TickInterval
	c.view.ShowGuidance(guideReadyTitle, fmt.Sprintf("Game will start %s after you focus the terminal", delay))
	c.view.UpdateScoreboard(c.Scoreboard())
	c.log.Debug().Int("words", len(c.tracker.words)).Msg("game created")
	return c
}

// ID identifies this game instance.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// State returns the current state.
func (c *Controller) State() model.State {
	return c.state
}

// Tracker exposes the progress tracker for read access.
func (c *Controller) Tracker() *Tracker {
	return c.tracker
}

// Subscribe registers fn for state changes. Changes are delivered
// synchronously in the order transitions happen; a transition made by a
// listener is delivered after the current change reaches every listener.
func (c *Controller) Subscribe(fn func(model.StateChange)) (unsubscribe func()) {
	l := &listener{fn: fn}
	c.listeners = append(c.listeners, l)
	return func() {
		for i, existing := range c.listeners {
			if existing == l {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// FocusGained starts the transition delay from WaitingToStart or Paused.
func (c *Controller) FocusGained() error {
	switch c.state {
	case model.WaitingToStart, model.Paused:
		c.beginTransition()
		return nil
	default:
		return c.ignored("focus gained")
	}
}

// FocusLost pauses a game in progress.
func (c *Controller) FocusLost() error {
	if c.state != model.InProgress {
		return c.ignored("focus lost")
	}
	c.view.ShowGuidance(guidePausedTitle, guidePausedDesc)
	c.transition(model.Paused)
	return nil
}

// Keystroke submits key to the tracker while the game is in progress.
func (c *Controller) Keystroke(key rune) error {
	if c.state != model.InProgress {
		return c.ignored("key pressed")
	}
	result, err := c.tracker.Submit(key)
	if errors.Is(err, ErrOutOfRange) {
		c.finish(model.FinishPassageCompleted)
		return nil
	}
	if err != nil {
		return err
	}
	switch result {
	case MatchIncorrect:
		c.view.WrongKey(key)
	case MatchCorrect:
		if c.state != model.InProgress {
			return nil
		}
		if next, err := c.tracker.Expected(); err == nil {
			cur := c.tracker.Cursor()
			c.view.MarkProgress(cur.Word, cur.Char)
			c.view.HighlightExpected(next)
		}
		c.view.UpdateScoreboard(c.Scoreboard())
	}
	return nil
}

// Scoreboard computes the live score.
func (c *Controller) Scoreboard() model.Scoreboard {
	correct, incorrect := c.tracker.Correct(), c.tracker.Errors()
	wpm, _, _ := stats.SessionMetrics(correct, incorrect, c.elapsed().Milliseconds())
	return model.Scoreboard{
		Errors:        incorrect,
		WPM:           wpm,
		Accuracy:      stats.Accuracy(correct, incorrect),
		Remaining:     c.remaining(),
		RemainingTime: time.Duration(c.remaining()) * c.cfg.TickInterval,
	}
}

// Result returns the session summary.
func (c *Controller) Result() model.Result {
	samples := make([]float64, len(c.samples))
	copy(samples, c.samples)
	return model.Result{
		GameID:         c.id,
		Reason:         c.reason,
		WordsCompleted: c.tracker.Cursor().Word,
		TotalWords:     len(c.tracker.words),
		Correct:        c.tracker.Correct(),
		Errors:         c.tracker.Errors(),
		Elapsed:        c.elapsed(),
		WPMSamples:     samples,
	}
}

func (c *Controller) beginTransition() {
	c.resumeFrom = c.state
	c.transition(model.InTransition)
	done, err := c.delay.Start(c.cfg.TransitionDelay)
	if err != nil {
		c.defect(err)
	}
	done.Then(c.delayDone)
}

func (c *Controller) delayDone() {
	if c.state != model.InTransition {
		c.log.Warn().Stringer("state", c.state).Msg("transition delay finished outside transition")
		return
	}
	if c.resumeFrom == model.WaitingToStart {
		c.tracker.Reset()
		c.samples = nil
		c.played = 0
		c.started = true
		c.highlightCursor()
		c.view.ShowGuidance(guideFocusedTitle, guideTypeFast)
	} else {
		c.view.ShowGuidance(guideResumedTitle, guideTypeFast)
	}
	// The game clock follows this transition through TrackState.
	c.transition(model.InProgress)
}

func (c *Controller) clockTick(remaining int) {
	if !c.started {
		return
	}
	score := c.Scoreboard()
	for len(c.samples) < c.cfg.GameDuration-remaining {
		c.samples = append(c.samples, score.WPM)
	}
	c.view.UpdateScoreboard(score)
}

func (c *Controller) clockExpired() {
	if c.state != model.InProgress {
		return
	}
	c.finish(model.FinishClockExpired)
}

func (c *Controller) wordCompleted(index int) {
	c.view.MarkWordComplete(index)
	if index+1 < len(c.tracker.words) {
		c.view.MarkWordActive(index + 1)
	}
}

func (c *Controller) finish(reason model.FinishReason) {
	c.reason = reason
	c.view.ClearHighlight()
	if reason == model.FinishClockExpired {
		c.view.ShowGuidance(guideTimeUpTitle, "")
	} else {
		c.view.ShowGuidance(guideCompleteTitle, "")
	}
	c.transition(model.Finished)
	c.view.UpdateScoreboard(c.Scoreboard())
	c.log.Info().
		Stringer("reason", reason).
		Int("correct", c.tracker.Correct()).
		Int("errors", c.tracker.Errors()).
		Dur("elapsed", c.elapsed()).
		Msg("game finished")
}

func (c *Controller) transition(to model.State) {
	from := c.state
	c.state = to
	switch {
	case from == model.InProgress && to != model.InProgress:
		c.played += c.clk.Since(c.playStart)
	case to == model.InProgress:
		c.playStart = c.clk.Now()
	}
	c.log.Debug().Stringer("from", from).Stringer("to", to).Msg("state changed")
	c.emit(model.StateChange{From: from, To: to})
}

func (c *Controller) emit(change model.StateChange) {
	c.pending = append(c.pending, change)
	if c.notifying {
		return
	}
	c.notifying = true
	defer func() { c.notifying = false }()
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		listeners := append([]*listener(nil), c.listeners...)
		for _, l := range listeners {
			l.fn(next)
		}
	}
}

func (c *Controller) highlightCursor() {
	ch, err := c.tracker.Expected()
	if err != nil {
		c.view.ClearHighlight()
		return
	}
	cur := c.tracker.Cursor()
	c.view.MarkWordActive(cur.Word)
	c.view.MarkProgress(cur.Word, cur.Char)
	c.view.HighlightExpected(ch)
}

func (c *Controller) remaining() int {
	if !c.started {
		return c.cfg.GameDuration
	}
	return c.clock.Remaining()
}

func (c *Controller) elapsed() time.Duration {
	if c.state == model.InProgress {
		return c.played + c.clk.Since(c.playStart)
	}
	return c.played
}

func (c *Controller) ignored(trigger string) error {
	return fmt.Errorf("%s while %s: %w", trigger, c.state, ErrInvalidTransition)
}

func (c *Controller) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrInvalidTransition) {
		c.log.Debug().Err(err).Stringer("state", c.state).Msg("trigger ignored")
		return
	}
	c.log.Warn().Err(err).Msg("event failed")
}

// defect handles errors that only a programming mistake can cause.
func (c *Controller) defect(err error) {
	c.log.Error().Err(err).Stringer("state", c.state).Msg("game defect")
	panic(err)
}
