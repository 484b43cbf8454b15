package terminal

import (
	"reflect"
	"testing"

	"chosenoffset.com/mhaclient/internal/colorize"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"word wrap", "hello world foo", 11, []string{"hello world", "foo"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"newline", "a\nb", 10, []string{"a", "b"}},
		{"wide runes", "日本語の文字", 6, []string{"日本語", "の文字"}},
		{"leading blanks dropped on wrap", "aaa    bbb", 4, []string{"aaa", "bbb"}},
		{"empty", "", 10, []string{""}},
		{"no width", "hello world", 0, []string{"hello world"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWrapSpansKeepsStyles(t *testing.T) {
	spans := []colorize.Span{
		{Text: "Izuku", Color: "#00ff00", Kind: colorize.KindCharacter},
		{Text: " runs far away"},
	}
	rows := wrapSpans(spans, 10)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != 2 {
		t.Fatalf("Expected 2 spans in first row, got %d", len(rows[0]))
	}
	if rows[0][0].Kind != colorize.KindCharacter || rows[0][0].Text != "Izuku" {
		t.Errorf("Expected styled hero name first, got %+v", rows[0][0])
	}
	if rows[0][1].Text != " runs" {
		t.Errorf("Expected ' runs', got '%s'", rows[0][1].Text)
	}
	if got := colorize.Plain(rows[1]); got != "far away" {
		t.Errorf("Expected 'far away', got '%s'", got)
	}
}

func TestWrapSpansMergesAdjacentPlainText(t *testing.T) {
	rows := wrapSpans([]colorize.Span{{Text: "one two"}, {Text: " three"}}, 40)
	if len(rows) != 1 || len(rows[0]) != 1 {
		t.Fatalf("Expected one merged span, got %+v", rows)
	}
	if rows[0][0].Text != "one two three" {
		t.Errorf("Expected 'one two three', got '%s'", rows[0][0].Text)
	}
}
