// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keyrush/internal/model"
)

const (
	visibleLines  = 3
	flashDuration = 150 * time.Millisecond
)

type flashDoneMsg int

// StateSource publishes game state changes.
type StateSource interface {
	Subscribe(fn func(model.StateChange)) (unsubscribe func())
}

// Model implements the Bubble Tea typing UI. It is the game's view and
// its input source.
type Model struct {
	keys     keyMap
	help     help.Model
	keyboard keyboard

	width  int
	height int

	words  []string
	status []wordStatus
	active int
	typed  int
	target rune

	guideTitle string
	guideDesc  string
	score      model.Scoreboard
	state      model.State

	flashKey   rune
	flashWrong bool
	flashSeq   int
	cmds       []tea.Cmd

	focusGained func()
	focusLost   func()
	keyPressed  func(rune)
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	typedStyle       = currentWordStyle.Bold(true)
	cursorStyle      = currentWordStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	guideTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	guideDescStyle   = pendingStyle

	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	targetKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	hitKeyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	wrongKeyStyle  = incorrectStyle.Bold(true)
)

// NewModel constructs a typing TUI model with the given keyboard layout.
func NewModel(layout []string) *Model {
	return &Model{
		keys:     newKeyMap(),
		help:     help.New(),
		keyboard: newKeyboard(layout),
		state:    model.WaitingToStart,
	}
}

// Track follows game state so the key bindings match what the game
// accepts. Exit only becomes available once the game is finished.
func (m *Model) Track(src StateSource) (unsubscribe func()) {
	return src.Subscribe(func(change model.StateChange) {
		m.state = change.To
		finished := change.To == model.Finished
		m.keys.Exit.SetEnabled(finished)
		m.keys.Start.SetEnabled(!finished)
		m.keys.Pause.SetEnabled(!finished)
	})
}

// RenderPassage implements game.View.
func (m *Model) RenderPassage(words []string) {
	m.words = append([]string(nil), words...)
	m.status = make([]wordStatus, len(words))
}

// HighlightExpected implements game.View.
func (m *Model) HighlightExpected(ch rune) {
	m.target = ch
}

// ClearHighlight implements game.View.
func (m *Model) ClearHighlight() {
	m.target = 0
}

// MarkWordComplete implements game.View.
func (m *Model) MarkWordComplete(index int) {
	if index >= 0 && index < len(m.status) {
		m.status[index] = wordDone
	}
}

// MarkWordActive implements game.View.
func (m *Model) MarkWordActive(index int) {
	if index >= 0 && index < len(m.status) {
		m.status[index] = wordActive
		m.active = index
		m.typed = 0
	}
}

// MarkProgress implements game.View.
func (m *Model) MarkProgress(word, typed int) {
	m.active = word
	m.typed = typed
}

// ShowGuidance implements game.View.
func (m *Model) ShowGuidance(title, description string) {
	m.guideTitle = title
	m.guideDesc = description
}

// UpdateScoreboard implements game.View.
func (m *Model) UpdateScoreboard(score model.Scoreboard) {
	m.score = score
}

// WrongKey implements game.View.
func (m *Model) WrongKey(ch rune) {
	m.flash(ch, true)
}

// OnFocusGained implements game.InputSource.
func (m *Model) OnFocusGained(fn func()) {
	m.focusGained = fn
}

// OnFocusLost implements game.InputSource.
func (m *Model) OnFocusLost(fn func()) {
	m.focusLost = fn
}

// OnKeyPressed implements game.InputSource.
func (m *Model) OnKeyPressed(fn func(rune)) {
	m.keyPressed = fn
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case dispatchMsg:
		msg()
	case flashDoneMsg:
		if int(msg) == m.flashSeq {
			m.flashKey = 0
		}
	case tea.FocusMsg:
		call(m.focusGained)
	case tea.BlurMsg:
		call(m.focusLost)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Exit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Start):
			call(m.focusGained)
		case key.Matches(msg, m.keys.Pause):
			call(m.focusLost)
		case msg.Type == tea.KeySpace:
			m.press(' ')
		case msg.Type == tea.KeyRunes && !msg.Paste:
			for _, r := range msg.Runes {
				m.press(r)
			}
		}
	}
	return m, m.flushCmds()
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.words) == 0 {
		return ""
	}
	contentWidth := 60
	if m.width > 0 {
		contentWidth = int(float64(m.width) * 0.70)
		if contentWidth < 20 {
			contentWidth = m.width
		}
	}
	sections := []string{
		guideTitleStyle.Render(m.guideTitle),
		guideDescStyle.Render(m.guideDesc),
		"",
		m.renderPassage(contentWidth),
		"",
		m.keyboard.render(m.target, m.flashKey, m.flashWrong),
		"",
		m.renderFooter(),
		m.help.View(m.keys),
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderPassage(width int) string {
	lines := layoutLines(m.words, width)
	focus := lineOfWord(lines, m.active)
	start, end := visibleWindow(len(lines), focus, visibleLines)
	rendered := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		rendered = append(rendered, renderLine(m.words, m.status, line, m.typed))
	}
	return strings.Join(rendered, "\n")
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Errors %d", m.score.Errors),
		fmt.Sprintf("%.1f WPM", m.score.WPM),
		fmt.Sprintf("%.1f%%", m.score.Accuracy*100),
		fmt.Sprintf("%s left", m.score.RemainingTime),
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func (m *Model) press(r rune) {
	if !unicode.IsSpace(r) {
		m.flash(r, false)
	}
	if m.keyPressed != nil {
		m.keyPressed(r)
	}
}

func (m *Model) flash(ch rune, wrong bool) {
	if _, ok := m.keyboard.lookup(ch); !ok {
		return
	}
	m.flashSeq++
	m.flashKey = ch
	m.flashWrong = wrong
	seq := m.flashSeq
	m.cmds = append(m.cmds, tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashDoneMsg(seq)
	}))
}

func (m *Model) flushCmds() tea.Cmd {
	if len(m.cmds) == 0 {
		return nil
	}
	cmd := tea.Batch(m.cmds...)
	m.cmds = nil
	return cmd
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
