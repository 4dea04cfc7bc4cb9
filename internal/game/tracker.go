// Package game implements the typing game: progress tracking over a
// passage and the state machine that drives a session.
package game

import (
	"fmt"
	"unicode"
)

// MatchResult is the outcome of a submitted key.
type MatchResult int

// Match results. Whitespace keys are ignored and produce MatchIgnored.
const (
	MatchIgnored MatchResult = iota
	MatchCorrect
	MatchIncorrect
)

func (r MatchResult) String() string {
	switch r {
	case MatchCorrect:
		return "correct"
	case MatchIncorrect:
		return "incorrect"
	default:
		return "ignored"
	}
}

// Cursor points at the next expected character.
type Cursor struct {
	Word int
	Char int
}

// Tracker owns the passage, the cursor and the keystroke counters.
type Tracker struct {
	words []string
	runes [][]rune

	cursor  Cursor
	errors  int
	correct int

	wordFns    []func(index int)
	passageFns []func()
	errorFns   []func(count int)
}

// NewTracker returns a Tracker over words. Empty words are skipped.
func NewTracker(words []string) *Tracker {
	t := &Tracker{}
	for _, w := range words {
		if w == "" {
			continue
		}
		t.words = append(t.words, w)
		t.runes = append(t.runes, []rune(w))
	}
	return t
}

// OnWordCompleted registers fn to receive the index of each completed word.
func (t *Tracker) OnWordCompleted(fn func(index int)) {
	t.wordFns = append(t.wordFns, fn)
}

// OnPassageCompleted registers fn to run when the last word is completed.
func (t *Tracker) OnPassageCompleted(fn func()) {
	t.passageFns = append(t.passageFns, fn)
}

// OnError registers fn to receive the error count after each mismatch.
func (t *Tracker) OnError(fn func(count int)) {
	t.errorFns = append(t.errorFns, fn)
}

// Words returns a copy of the passage.
func (t *Tracker) Words() []string {
	out := make([]string, len(t.words))
	copy(out, t.words)
	return out
}

// Cursor returns the current position.
func (t *Tracker) Cursor() Cursor {
	return t.cursor
}

// Errors returns the number of mismatched keys since the last reset.
func (t *Tracker) Errors() int {
	return t.errors
}

// Correct returns the number of matched keys since the last reset.
func (t *Tracker) Correct() int {
	return t.correct
}

// Done reports whether every word has been typed.
func (t *Tracker) Done() bool {
	return t.cursor.Word >= len(t.runes)
}

// Expected returns the character at the cursor.
func (t *Tracker) Expected() (rune, error) {
	if t.Done() {
		return 0, fmt.Errorf("word %d of %d: %w", t.cursor.Word, len(t.runes), ErrOutOfRange)
	}
	return t.runes[t.cursor.Word][t.cursor.Char], nil
}

// Submit compares key with the expected character, ignoring case.
// Whitespace is never typed content and leaves everything untouched.
func (t *Tracker) Submit(key rune) (MatchResult, error) {
	if unicode.IsSpace(key) {
		return MatchIgnored, nil
	}
	expected, err := t.Expected()
	if err != nil {
		return MatchIgnored, err
	}
	if unicode.ToLower(key) != unicode.ToLower(expected) {
		t.errors++
		for _, fn := range t.errorFns {
			fn(t.errors)
		}
		return MatchIncorrect, nil
	}

	t.correct++
	t.cursor.Char++
	if t.cursor.Char < len(t.runes[t.cursor.Word]) {
		return MatchCorrect, nil
	}
	completed := t.cursor.Word
	t.cursor = Cursor{Word: completed + 1}
	for _, fn := range t.wordFns {
		fn(completed)
	}
	if t.Done() {
		for _, fn := range t.passageFns {
			fn()
		}
	}
	return MatchCorrect, nil
}

// Reset moves the cursor to the start and clears the counters.
func (t *Tracker) Reset() {
	t.cursor = Cursor{}
	t.errors = 0
	t.correct = 0
}
