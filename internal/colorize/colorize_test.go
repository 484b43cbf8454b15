package colorize

import (
	"strings"
	"testing"
)

func testColorizer(t *testing.T) *Colorizer {
	t.Helper()
	c, err := New([]Term{
		{Text: "Izuku Midoriya", Color: "#4CAF50", Kind: KindCharacter, WholeWord: true},
		{Text: "Tenya Iida", Color: "#0000FF", Kind: KindCharacter, WholeWord: true},
		{Text: "FOREST", Color: "#4CAF50", Kind: KindZone, WholeWord: true},
		{Text: "LAKE", Color: "#2196F3", Kind: KindZone, WholeWord: true},
		{Text: "[Aizawa]:", Color: "#FFFFFF", Kind: KindNarrator},
		{Text: "Aizawa", Color: "#FFFFFF", Kind: KindNarrator, WholeWord: true},
	})
	if err != nil {
		t.Fatalf("Failed to build colorizer: %v", err)
	}
	return c
}

func TestWholeWordNameIsWrapped(t *testing.T) {
	c := testColorizer(t)
	got := HTML(c.Spans("Izuku Midoriya steps forward."))
	want := `<strong style="color: #4CAF50;">Izuku Midoriya</strong> steps forward.`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if n := strings.Count(got, "<strong"); n != 1 {
		t.Errorf("Expected exactly 1 strong element, got %d", n)
	}
}

func TestPartialWordIsNotWrapped(t *testing.T) {
	c := testColorizer(t)
	for _, text := range []string{
		"Izuku Midoriyas",
		"XIzuku Midoriya",
		"Izuku Midoriya_2",
		"FORESTS of LAKEside",
		"Aizawa-sensei vs Aizawas",
	} {
		spans := c.Spans(text)
		for _, s := range spans {
			if s.Kind != KindPlain && s.Text != "Aizawa" {
				t.Errorf("%q: expected no highlight, got span %+v", text, s)
			}
		}
	}
}

func TestHyphenIsABoundary(t *testing.T) {
	c := testColorizer(t)
	spans := c.Spans("Aizawa-sensei")
	if len(spans) != 2 || spans[0].Kind != KindNarrator || spans[0].Text != "Aizawa" {
		t.Errorf("Expected narrator span then plain text, got %+v", spans)
	}
}

func TestEveryOccurrenceIsMatched(t *testing.T) {
	c := testColorizer(t)
	got := HTML(c.Spans("LAKE then FOREST then LAKE"))
	if n := strings.Count(got, "font-weight: bold;"); n != 3 {
		t.Errorf("Expected 3 zone spans, got %d in %q", n, got)
	}
	want := `<span style="color: #2196F3; font-weight: bold;">LAKE</span> then `
	if !strings.HasPrefix(got, want) {
		t.Errorf("Expected prefix %q, got %q", want, got)
	}
}

func TestNarratorTagPrefersLongestMatch(t *testing.T) {
	c := testColorizer(t)
	got := HTML(c.Spans("[Aizawa]: Listen up. Aizawa sighs."))
	want := `<strong style="color: #FFFFFF;">[Aizawa]:</strong> Listen up. <strong style="color: #FFFFFF;">Aizawa</strong> sighs.`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestPlainTextIsEscapedInHTML(t *testing.T) {
	c := testColorizer(t)
	got := HTML(c.Spans("<b>Tenya Iida</b> & co"))
	want := `&lt;b&gt;<strong style="color: #0000FF;">Tenya Iida</strong>&lt;/b&gt; &amp; co`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSpansAreIdempotentOverSource(t *testing.T) {
	c := testColorizer(t)
	text := "Izuku Midoriya meets Tenya Iida in the FOREST. [Aizawa]: Move."
	first := HTML(c.Spans(text))
	second := HTML(c.Spans(text))
	if first != second {
		t.Errorf("Expected identical output, got %q and %q", first, second)
	}
	if Plain(c.Spans(text)) != text {
		t.Errorf("Expected Plain to restore source text")
	}
}

func TestANSIResetsAfterEachSpan(t *testing.T) {
	c := testColorizer(t)
	got := ANSI(c.Spans("go LAKE now"))
	want := "go \x1b[1m\x1b[38;2;33;150;243mLAKE\x1b[0m now"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNewRejectsBadTerms(t *testing.T) {
	if _, err := New([]Term{{Text: "", Color: "#FFFFFF"}}); err == nil {
		t.Error("Expected error for empty term")
	}
	if _, err := New([]Term{{Text: "x", Color: "red"}}); err == nil {
		t.Error("Expected error for non-hex colour")
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FF5722")
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}
	if c.R != 0xFF || c.G != 0x57 || c.B != 0x22 || c.A != 255 {
		t.Errorf("Expected {255 87 34 255}, got %v", c)
	}
	if _, err := ParseHex("#GGGGGG"); err == nil {
		t.Error("Expected error for invalid hex digits")
	}
}
