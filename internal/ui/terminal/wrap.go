package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"chosenoffset.com/mhaclient/internal/colorize"
)

// wrapSpans breaks styled text into rows no wider than width display
// columns. Words move to the next row whole unless they alone exceed the
// width; East Asian wide characters count as two columns.
func wrapSpans(spans []colorize.Span, width int) [][]colorize.Span {
	if width <= 0 {
		return [][]colorize.Span{spans}
	}

	var rows [][]colorize.Span
	var row []colorize.Span
	col := 0

	emit := func() {
		rows = append(rows, trimRow(row))
		row = nil
		col = 0
	}
	add := func(sp colorize.Span, text string) {
		if n := len(row); n > 0 && row[n-1].Color == sp.Color && row[n-1].Kind == sp.Kind {
			row[n-1].Text += text
			return
		}
		sp.Text = text
		row = append(row, sp)
	}

	for _, sp := range spans {
		for _, tok := range tokenize(sp.Text) {
			switch {
			case tok == "\n":
				emit()
				continue
			case isBlank(tok):
				if col == 0 {
					continue
				}
				w := runewidth.StringWidth(tok)
				if col+w > width {
					emit()
					continue
				}
				add(sp, tok)
				col += w
				continue
			}

			w := runewidth.StringWidth(tok)
			if col > 0 && col+w > width {
				emit()
			}
			for w > width-col {
				head, tail := cutWidth(tok, width-col)
				add(sp, head)
				emit()
				tok = tail
				w = runewidth.StringWidth(tok)
			}
			if tok != "" {
				add(sp, tok)
				col += w
			}
		}
	}
	if len(row) > 0 || len(rows) == 0 {
		emit()
	}
	return rows
}

// tokenize splits s into runs of blanks, runs of other characters and
// single newlines.
func tokenize(s string) []string {
	var out []string
	start := -1
	blank := false
	for i, r := range s {
		if r == '\n' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			out = append(out, "\n")
			continue
		}
		b := r == ' ' || r == '\t'
		if start >= 0 && b != blank {
			out = append(out, s[start:i])
			start = -1
		}
		if start < 0 {
			start = i
			blank = b
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func isBlank(s string) bool {
	return strings.Trim(s, " \t") == ""
}

// cutWidth splits s after at most w columns. It always takes at least one
// rune so a character wider than w still makes progress.
func cutWidth(s string, w int) (string, string) {
	col := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if col+rw > w && i > 0 {
			return s[:i], s[i:]
		}
		col += rw
	}
	return s, ""
}

func trimRow(row []colorize.Span) []colorize.Span {
	for len(row) > 0 {
		last := &row[len(row)-1]
		last.Text = strings.TrimRight(last.Text, " \t")
		if last.Text != "" {
			break
		}
		row = row[:len(row)-1]
	}
	return row
}

// wrapText wraps unstyled text.
func wrapText(s string, width int) []string {
	rows := wrapSpans([]colorize.Span{{Text: s}}, width)
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = colorize.Plain(row)
	}
	return out
}
