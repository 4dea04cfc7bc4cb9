package tui

import (
	"strings"
	"unicode"
)

// DefaultLayout is the on-screen keyboard, one string per row.
var DefaultLayout = []string{"QWERTYUIOP", "ASDFGHJKL", "ZXCVBNM"}

type keyPos struct {
	row int
	col int
}

// keyboard maps characters to key caps on screen.
type keyboard struct {
	rows  [][]rune
	index map[rune]keyPos
}

func newKeyboard(layout []string) keyboard {
	kb := keyboard{index: map[rune]keyPos{}}
	for r, row := range layout {
		caps := []rune(row)
		kb.rows = append(kb.rows, caps)
		for c, ch := range caps {
			kb.index[unicode.ToLower(ch)] = keyPos{row: r, col: c}
		}
	}
	return kb
}

func (k keyboard) lookup(ch rune) (keyPos, bool) {
	if ch == 0 {
		return keyPos{}, false
	}
	pos, ok := k.index[unicode.ToLower(ch)]
	return pos, ok
}

func (k keyboard) render(target, flash rune, flashWrong bool) string {
	targetPos, hasTarget := k.lookup(target)
	flashPos, hasFlash := k.lookup(flash)
	lines := make([]string, len(k.rows))
	for r, row := range k.rows {
		caps := make([]string, len(row))
		for c, ch := range row {
			pos := keyPos{row: r, col: c}
			style := keyStyle
			switch {
			case hasFlash && pos == flashPos && flashWrong:
				style = wrongKeyStyle
			case hasFlash && pos == flashPos:
				style = hitKeyStyle
			case hasTarget && pos == targetPos:
				style = targetKeyStyle
			}
			caps[c] = style.Render(string(ch))
		}
		lines[r] = strings.Repeat(" ", r) + strings.Join(caps, " ")
	}
	return strings.Join(lines, "\n")
}
