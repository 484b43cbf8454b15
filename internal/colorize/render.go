package colorize

import (
	"fmt"
	"html"
	"strings"
)

// HTML renders spans as inline-styled markup. Plain text is escaped.
func HTML(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		text := html.EscapeString(s.Text)
		switch s.Kind {
		case KindPlain:
			b.WriteString(text)
		case KindZone:
			fmt.Fprintf(&b, `<span style="color: %s; font-weight: bold;">%s</span>`, s.Color, text)
		default:
			fmt.Fprintf(&b, `<strong style="color: %s;">%s</strong>`, s.Color, text)
		}
	}
	return b.String()
}

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
)

// ANSI renders spans for a true-colour terminal. Each styled span resets
// after itself so plain text never inherits a colour.
func ANSI(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Kind == KindPlain {
			b.WriteString(s.Text)
			continue
		}
		b.WriteString(ansiBold)
		if c, err := ParseHex(s.Color); err == nil {
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
		}
		b.WriteString(s.Text)
		b.WriteString(ansiReset)
	}
	return b.String()
}
