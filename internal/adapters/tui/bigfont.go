package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const glyphRows = 3

// glyphs maps each digit and the colon to a three-row half-block glyph.
var glyphs = map[rune][glyphRows]string{
	'0': {"█▀█", "█ █", "▀▀▀"},
	'1': {"▀█ ", " █ ", "▀▀▀"},
	'2': {"▀▀█", "█▀▀", "▀▀▀"},
	'3': {"▀▀█", " ▀█", "▀▀▀"},
	'4': {"█ █", "▀▀█", "  ▀"},
	'5': {"█▀▀", "▀▀█", "▀▀▀"},
	'6': {"█▀▀", "█▀█", "▀▀▀"},
	'7': {"▀▀█", "  █", "  ▀"},
	'8': {"█▀█", "█▀█", "▀▀▀"},
	'9': {"█▀█", "▀▀█", "▀▀▀"},
	':': {"▄", " ", "▀"},
}

// bigTimeMinWidth is the narrowest terminal that gets the glyph rendering.
const bigTimeMinWidth = 30

// renderBigTime renders an MM:SS string with glyphs, or as a single bold
// line when the terminal is too narrow. Minutes past 99 widen the output.
func renderBigTime(display string, color lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < bigTimeMinWidth {
		return style.Render(display)
	}

	var rows [glyphRows]strings.Builder
	first := true
	for _, ch := range display {
		glyph, ok := glyphs[ch]
		if !ok {
			continue
		}
		for i := range rows {
			if !first {
				rows[i].WriteString(" ")
			}
			rows[i].WriteString(glyph[i])
		}
		first = false
	}

	styled := make([]string, glyphRows)
	for i := range rows {
		styled[i] = style.Render(rows[i].String())
	}
	return strings.Join(styled, "\n")
}
