package markdown

import (
	"strings"
	"testing"
)

const bank = `---
category: deep
---

# Deep questions

- What is a memory of us you replay often?
- What would you like us to
  try together next year?

Some prose that is not a question.

1. Numbered items count too?
`

func TestListItems(t *testing.T) {
	p := NewParser()

	items, meta, err := p.ListItems([]byte(bank))
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}

	if meta["category"] != "deep" {
		t.Errorf("category = %v, want deep", meta["category"])
	}

	want := []string{
		"What is a memory of us you replay often?",
		"What would you like us to try together next year?",
		"Numbered items count too?",
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items %q, want %d", len(items), items, len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestParseEscapesRawHTML(t *testing.T) {
	p := NewParser()

	html, err := p.Parse([]byte("today was **lovely** <script>alert(1)</script>"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, "<strong>lovely</strong>") {
		t.Errorf("expected bold markup, got %s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw script tag leaked into output: %s", out)
	}
}

func TestExtractFrontmatterMissing(t *testing.T) {
	p := NewParser()
	meta := p.ExtractFrontmatter([]byte("- just a question?"))
	if len(meta) != 0 {
		t.Errorf("expected empty meta, got %v", meta)
	}
}
