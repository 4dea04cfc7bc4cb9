package game

import "github.com/verte-zerg/keyrush/internal/model"

// View renders the game. All calls arrive on the dispatcher thread.
type View interface {
	RenderPassage(words []string)
	HighlightExpected(ch rune)
	ClearHighlight()
	MarkWordComplete(index int)
	MarkWordActive(index int)
	MarkProgress(word, typed int)
	ShowGuidance(title, description string)
	UpdateScoreboard(score model.Scoreboard)
	WrongKey(key rune)
}

// InputSource registers callbacks for player input. Callbacks must be
// invoked on the dispatcher thread.
type InputSource interface {
	OnFocusGained(fn func())
	OnFocusLost(fn func())
	OnKeyPressed(fn func(key rune))
}

// Guidance texts.
const (
	guideReadyTitle    = "GET READY TO PLAY!"
	guideWait          = "Wait for it!"
	guideFocusedTitle  = "Stay Focused"
	guideTypeFast      = "Type as fast as you can"
	guidePausedTitle   = "Game is paused"
	guidePausedDesc    = "Focus the terminal to continue playing"
	guideResumedTitle  = "Game is resumed"
	guideTimeUpTitle   = "Time is up!"
	guideCompleteTitle = "Passage complete!"
)
