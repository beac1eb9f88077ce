package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Seven-segment bits: top, upper right, lower right, bottom, lower left,
// upper left, middle.
const (
	segA = 1 << iota
	segB
	segC
	segD
	segE
	segF
	segG
)

var digitSegments = [10]uint8{
	segA | segB | segC | segD | segE | segF,
	segB | segC,
	segA | segB | segG | segE | segD,
	segA | segB | segG | segC | segD,
	segF | segG | segB | segC,
	segA | segF | segG | segC | segD,
	segA | segF | segG | segE | segC | segD,
	segA | segB | segC,
	segA | segB | segC | segD | segE | segF | segG,
	segA | segB | segC | segD | segF | segG,
}

// glyph draws a digit three cells wide and five rows tall.
func glyph(segs uint8) [5]string {
	on := func(mask uint8) bool { return segs&mask != 0 }
	all := func(mask uint8) bool { return segs&mask == mask }
	cell := func(filled bool) string {
		if filled {
			return "█"
		}
		return " "
	}
	row := func(left, mid, right bool) string {
		return cell(left) + cell(mid) + cell(right)
	}

	return [5]string{
		row(on(segA|segF), on(segA), on(segA|segB)),
		row(on(segF), false, on(segB)),
		row(on(segG) || all(segF|segE), on(segG), on(segG) || all(segB|segC)),
		row(on(segE), false, on(segC)),
		row(on(segD|segE), on(segD), on(segD|segC)),
	}
}

var colonGlyph = [5]string{" ", "█", " ", "█", " "}

// renderBigTime draws a clock string such as "14:32" or "1:05:00" in
// five-line block glyphs. Narrow terminals get a single bold line.
func renderBigTime(timeStr string, color lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < 40 {
		return style.Render(timeStr)
	}

	var lines [5]string
	for _, ch := range timeStr {
		var g [5]string
		switch {
		case ch >= '0' && ch <= '9':
			g = glyph(digitSegments[ch-'0'])
		case ch == ':':
			g = colonGlyph
		default:
			continue
		}
		for i := range lines {
			if lines[i] != "" {
				lines[i] += " "
			}
			lines[i] += g[i]
		}
	}

	styled := make([]string, len(lines))
	for i, line := range lines {
		styled[i] = style.Render(line)
	}
	return strings.Join(styled, "\n")
}
