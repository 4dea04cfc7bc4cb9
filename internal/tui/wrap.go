package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type wordStatus int

const (
	wordPending wordStatus = iota
	wordActive
	wordDone
)

// layoutLines groups word indexes into lines no wider than width. A word
// wider than width gets a line of its own.
func layoutLines(words []string, width int) [][]int {
	var lines [][]int
	var line []int
	lineWidth := 0
	for i, word := range words {
		w := runewidth.StringWidth(word)
		if len(line) > 0 && width > 0 && lineWidth+1+w > width {
			lines = append(lines, line)
			line = nil
			lineWidth = 0
		}
		if len(line) > 0 {
			lineWidth++
		}
		line = append(line, i)
		lineWidth += w
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

func lineOfWord(lines [][]int, index int) int {
	for i, line := range lines {
		if len(line) > 0 && index <= line[len(line)-1] {
			return i
		}
	}
	return len(lines) - 1
}

// visibleWindow picks size lines around focus, keeping one line of
// context above it.
func visibleWindow(total, focus, size int) (start, end int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start = focus - 1
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}

func renderLine(words []string, status []wordStatus, line []int, typed int) string {
	parts := make([]string, len(line))
	for j, idx := range line {
		switch status[idx] {
		case wordActive:
			parts[j] = renderActiveWord(words[idx], typed)
		case wordDone:
			parts[j] = correctStyle.Render(words[idx])
		default:
			parts[j] = pendingStyle.Render(words[idx])
		}
	}
	return strings.Join(parts, " ")
}

// renderActiveWord styles the typed prefix, the next character and the
// rest of the word separately.
func renderActiveWord(word string, typed int) string {
	runes := []rune(word)
	if typed < 0 {
		typed = 0
	}
	if typed >= len(runes) {
		return typedStyle.Render(word)
	}
	var b strings.Builder
	if typed > 0 {
		b.WriteString(typedStyle.Render(string(runes[:typed])))
	}
	b.WriteString(cursorStyle.Render(string(runes[typed])))
	if typed+1 < len(runes) {
		b.WriteString(currentWordStyle.Render(string(runes[typed+1:])))
	}
	return b.String()
}
