package faq

import (
	"strings"
	"testing"
)

func TestEntries(t *testing.T) {
	if len(Entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(Entries))
	}
	for i, e := range Entries {
		if e.Question == "" || e.Answer == "" {
			t.Errorf("entry %d is incomplete: %+v", i, e)
		}
	}
}

func TestMarkdownNumbersQuestions(t *testing.T) {
	md := Markdown()
	if !strings.HasPrefix(md, "# "+Title) {
		t.Errorf("markdown should start with the title, got %q", md[:40])
	}
	for i, want := range []string{
		"## 1. How are the effective reproduction numbers calculated?",
		"## 6. How should the \"Average Serial Interval\" be chosen?",
		"## 7. How can I reach you?",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("case %d: markdown missing %q", i, want)
		}
	}
}

func TestRenderStyleWraps(t *testing.T) {
	out, err := RenderStyle(60, "notty")
	if err != nil {
		t.Fatalf("RenderStyle: %v", err)
	}
	if !strings.Contains(out, "How can I reach you?") {
		t.Error("rendered page lost the last question")
	}
	for _, line := range strings.Split(out, "\n") {
		if n := len([]rune(line)); n > 80 {
			t.Errorf("line wider than expected (%d): %q", n, line)
		}
	}
}

func TestRenderDefaultsWidth(t *testing.T) {
	out, err := RenderStyle(0, "ascii")
	if err != nil {
		t.Fatal(err)
	}
	if out == "" || !strings.HasSuffix(out, "\n") {
		t.Errorf("unexpected output %q", out)
	}
}
