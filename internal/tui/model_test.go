package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/keyrush/internal/game"
	"github.com/verte-zerg/keyrush/internal/loop"
	"github.com/verte-zerg/keyrush/internal/model"
)

type stateFeed struct {
	fns []func(model.StateChange)
}

func (f *stateFeed) Subscribe(fn func(model.StateChange)) func() {
	f.fns = append(f.fns, fn)
	return func() {}
}

func (f *stateFeed) publish(from, to model.State) {
	for _, fn := range f.fns {
		fn(model.StateChange{From: from, To: to})
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelForwardsFocusAndKeys(t *testing.T) {
	m := NewModel(DefaultLayout)
	var gained, lost int
	var keys []rune
	m.OnFocusGained(func() { gained++ })
	m.OnFocusLost(func() { lost++ })
	m.OnKeyPressed(func(r rune) { keys = append(keys, r) })

	m.Update(tea.FocusMsg{})
	m.Update(tea.BlurMsg{})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(runes("ab"))
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	if gained != 2 || lost != 2 {
		t.Fatalf("expected 2 focus gains and losses, got %d/%d", gained, lost)
	}
	if string(keys) != "ab " {
		t.Fatalf("expected keys %q, got %q", "ab ", string(keys))
	}
}

func TestModelIgnoresPastedText(t *testing.T) {
	m := NewModel(DefaultLayout)
	var keys []rune
	m.OnKeyPressed(func(r rune) { keys = append(keys, r) })
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("thebikers"), Paste: true})
	if len(keys) != 0 {
		t.Fatalf("pasted text reached the game as %q", string(keys))
	}
	m.Update(runes("t"))
	if string(keys) != "t" {
		t.Fatalf("expected typed key after paste, got %q", string(keys))
	}
}

func TestModelRendersTypedPrefix(t *testing.T) {
	m := NewModel(DefaultLayout)
	m.RenderPassage([]string{"cat", "dog"})
	m.MarkWordActive(0)
	m.MarkProgress(0, 1)
	got := m.renderPassage(60)
	want := typedStyle.Render("c") + cursorStyle.Render("a") + currentWordStyle.Render("t") + " " + pendingStyle.Render("dog")
	if got != want {
		t.Fatalf("renderPassage = %q, want %q", got, want)
	}
	if got := renderActiveWord("cat", 3); got != typedStyle.Render("cat") {
		t.Fatalf("fully typed word = %q", got)
	}
}

func TestModelRunsDispatchedCallbacks(t *testing.T) {
	m := NewModel(DefaultLayout)
	ran := false
	m.Update(dispatchMsg(func() { ran = true }))
	if !ran {
		t.Fatalf("expected dispatched callback to run")
	}
}

func TestModelExitOnlyWhenFinished(t *testing.T) {
	m := NewModel(DefaultLayout)
	feed := &stateFeed{}
	m.Track(feed)
	var keys []rune
	m.OnKeyPressed(func(r rune) { keys = append(keys, r) })

	m.Update(runes("q"))
	if string(keys) != "q" {
		t.Fatalf("expected q to reach the game, got %q", string(keys))
	}

	feed.publish(model.InProgress, model.Finished)
	_, cmd := m.Update(runes("q"))
	if cmd == nil || !isQuit(cmd) {
		t.Fatalf("expected q to quit once finished")
	}
	if m.keys.Start.Enabled() || m.keys.Pause.Enabled() {
		t.Fatalf("start and pause should be disabled once finished")
	}
}

func TestModelQuitsOnCtrlC(t *testing.T) {
	m := NewModel(DefaultLayout)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !isQuit(cmd) {
		t.Fatalf("expected ctrl+c to quit")
	}
}

func TestModelFlashClearsOnLatestTick(t *testing.T) {
	m := NewModel(DefaultLayout)
	m.Update(runes("a"))
	m.WrongKey('s')
	if m.flashKey != 's' || !m.flashWrong {
		t.Fatalf("expected wrong flash on s, got %q wrong=%v", m.flashKey, m.flashWrong)
	}
	m.Update(flashDoneMsg(m.flashSeq - 1))
	if m.flashKey != 's' {
		t.Fatalf("stale flash tick cleared the current flash")
	}
	m.Update(flashDoneMsg(m.flashSeq))
	if m.flashKey != 0 {
		t.Fatalf("expected flash cleared")
	}
}

func TestModelIgnoresUnknownFlashKeys(t *testing.T) {
	m := NewModel(DefaultLayout)
	if _, cmd := m.Update(runes("7")); cmd != nil {
		t.Fatalf("expected no flash command for a key off the keyboard")
	}
}

func TestModelViewShowsGameState(t *testing.T) {
	m := NewModel(DefaultLayout)
	if m.View() != "" {
		t.Fatalf("expected empty view before a passage is rendered")
	}
	m.RenderPassage([]string{"cat", "dog"})
	m.MarkWordComplete(0)
	m.MarkWordActive(1)
	m.MarkWordActive(5)
	m.ShowGuidance("Stay Focused", "Type as fast as you can")
	m.UpdateScoreboard(model.Scoreboard{Errors: 2, WPM: 12.5, Accuracy: 0.75, Remaining: 84, RemainingTime: 42 * time.Second})

	if m.status[0] != wordDone || m.status[1] != wordActive {
		t.Fatalf("unexpected word status %v", m.status)
	}
	view := m.View()
	for _, want := range []string{"Stay Focused", "Type as fast as you can", "cat", "dog", "Errors 2 · 12.5 WPM · 75.0% · 42s left"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestModelDrivesGame(t *testing.T) {
	clock := clockwork.NewFakeClock()
	events := loop.New(16)
	m := NewModel(DefaultLayout)
	cfg := model.Config{TickInterval: time.Second, TransitionDelay: 1, GameDuration: 5}
	g := game.New(cfg, []string{"go"}, m, m, clock, events, zerolog.Nop())
	m.Track(g)

	if m.target != 'g' || m.guideTitle != "GET READY TO PLAY!" {
		t.Fatalf("unexpected initial view: target=%q title=%q", m.target, m.guideTitle)
	}
	m.Update(tea.FocusMsg{})
	if g.State() != model.InTransition {
		t.Fatalf("expected InTransition, got %s", g.State())
	}
	clock.Advance(time.Second)
	select {
	case fn := <-events.Events():
		m.Update(dispatchMsg(fn))
	case <-time.After(time.Second):
		t.Fatalf("expected a dispatched tick")
	}
	if g.State() != model.InProgress {
		t.Fatalf("expected InProgress, got %s", g.State())
	}

	m.Update(runes("g"))
	if m.typed != 1 || m.active != 0 {
		t.Fatalf("expected one typed character in word 0, got %d in %d", m.typed, m.active)
	}
	m.Update(runes("x"))
	if m.target != 'o' || !m.flashWrong || m.flashKey != 'x' {
		t.Fatalf("expected target o and wrong flash on x, got %q %q %v", m.target, m.flashKey, m.flashWrong)
	}
	m.Update(runes("o"))
	if g.State() != model.Finished || m.state != model.Finished {
		t.Fatalf("expected finished game, got %s / %s", g.State(), m.state)
	}
	if m.target != 0 || m.status[0] != wordDone {
		t.Fatalf("expected cleared highlight and completed word")
	}
	if m.score.Errors != 1 {
		t.Fatalf("expected 1 error on the scoreboard, got %d", m.score.Errors)
	}
}

func isQuit(cmd tea.Cmd) bool {
	_, ok := cmd().(tea.QuitMsg)
	return ok
}
