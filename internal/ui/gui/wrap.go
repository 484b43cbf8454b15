package gui

import (
	"strings"
	"unicode/utf8"

	"chosenoffset.com/mhaclient/internal/colorize"
	"chosenoffset.com/mhaclient/internal/render"
)

// wrapSpans breaks styled text into rows no wider than maxWidth pixels as
// measured by m. Words move to the next row whole; a word wider than the
// row is broken between runes.
func wrapSpans(m render.TextMeasurer, spans []colorize.Span, maxWidth int) [][]colorize.Span {
	var rows [][]colorize.Span
	var row []colorize.Span
	x := 0

	width := func(s string) int {
		w, _ := m.MeasureText(s, 1)
		return w
	}
	newRow := func() {
		rows = append(rows, row)
		row = nil
		x = 0
	}
	add := func(sp colorize.Span, text string) {
		if n := len(row); n > 0 && row[n-1].Color == sp.Color && row[n-1].Kind == sp.Kind {
			row[n-1].Text += text
		} else {
			sp.Text = text
			row = append(row, sp)
		}
		x += width(text)
	}

	for _, sp := range spans {
		for i, part := range strings.Split(sp.Text, "\n") {
			if i > 0 {
				newRow()
			}
			for _, chunk := range strings.SplitAfter(part, " ") {
				if chunk == "" {
					continue
				}
				word := strings.TrimRight(chunk, " ")
				if word == "" && x == 0 {
					continue
				}
				if x > 0 && x+width(word) > maxWidth {
					newRow()
				}
				for x == 0 && width(word) > maxWidth && maxWidth > 0 {
					head := fitRunes(word, maxWidth, width)
					add(sp, head)
					newRow()
					word = word[len(head):]
					chunk = chunk[len(head):]
				}
				if chunk != "" {
					add(sp, chunk)
				}
			}
		}
	}
	if len(row) > 0 || len(rows) == 0 {
		newRow()
	}
	return rows
}

// fitRunes returns the longest prefix of s no wider than maxWidth, and at
// least one rune.
func fitRunes(s string, maxWidth int, width func(string) int) string {
	cut := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if cut > 0 && width(s[:next]) > maxWidth {
			break
		}
		cut = next
	}
	return s[:cut]
}
