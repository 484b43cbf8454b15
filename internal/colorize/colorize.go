// Package colorize highlights known character, zone and narrator names in
// narrative text. Matching is a single left-to-right pass over a trie of all
// terms that always takes the longest term that fits at a position, so no
// pass ever re-reads output produced by another.
package colorize

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Kind says how a highlighted span is styled.
type Kind int

const (
	KindPlain     Kind = iota // Unstyled text
	KindCharacter             // Bold, coloured hero name
	KindZone                  // Bold, coloured zone type
	KindNarrator              // Bold narrator tag
)

// Term is one highlightable string.
type Term struct {
	Text  string
	Color string // #RRGGBB
	Kind  Kind
	// WholeWord requires a word boundary on both ends, with the same
	// [A-Za-z0-9_] word definition that regular expressions use for \b.
	WholeWord bool
}

// Span is a run of output text. Plain spans have an empty Color.
type Span struct {
	Text  string
	Color string
	Kind  Kind
}

type node struct {
	next map[byte]*node
	term *Term
}

// Colorizer is immutable once built and safe for concurrent use.
type Colorizer struct {
	root *node
}

// New builds a colorizer over terms. Later duplicates of the same text
// replace earlier ones.
func New(terms []Term) (*Colorizer, error) {
	root := &node{next: map[byte]*node{}}
	for i := range terms {
		t := terms[i]
		if t.Text == "" {
			return nil, fmt.Errorf("term %d has empty text", i)
		}
		if _, err := ParseHex(t.Color); err != nil {
			return nil, fmt.Errorf("term %q: %w", t.Text, err)
		}
		n := root
		for j := 0; j < len(t.Text); j++ {
			c := t.Text[j]
			child, ok := n.next[c]
			if !ok {
				child = &node{next: map[byte]*node{}}
				n.next[c] = child
			}
			n = child
		}
		n.term = &t
	}
	return &Colorizer{root: root}, nil
}

// Spans splits text into plain and highlighted runs. Every occurrence of
// every term is found; overlapping candidates resolve to the longest.
func (c *Colorizer) Spans(text string) []Span {
	var out []Span
	plainStart := 0
	i := 0
	for i < len(text) {
		t := c.longestAt(text, i)
		if t == nil {
			i++
			continue
		}
		if plainStart < i {
			out = append(out, Span{Text: text[plainStart:i]})
		}
		out = append(out, Span{Text: t.Text, Color: t.Color, Kind: t.Kind})
		i += len(t.Text)
		plainStart = i
	}
	if plainStart < len(text) {
		out = append(out, Span{Text: text[plainStart:]})
	}
	return out
}

func (c *Colorizer) longestAt(text string, start int) *Term {
	var best *Term
	n := c.root
	for j := start; j < len(text); j++ {
		n = n.next[text[j]]
		if n == nil {
			break
		}
		if n.term != nil && fits(text, start, j+1, n.term) {
			best = n.term
		}
	}
	return best
}

// fits reports whether term, found at text[start:end], satisfies its
// boundary requirement.
func fits(text string, start, end int, t *Term) bool {
	if !t.WholeWord {
		return true
	}
	first, last := t.Text[0], t.Text[len(t.Text)-1]
	before := start > 0 && isWord(text[start-1])
	if before == isWord(first) {
		return false
	}
	after := end < len(text) && isWord(text[end])
	return after != isWord(last)
}

func isWord(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// ParseHex parses a #RRGGBB colour.
func ParseHex(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("colour %q is not #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q is not #RRGGBB", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Plain joins spans back into unstyled text.
func Plain(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
