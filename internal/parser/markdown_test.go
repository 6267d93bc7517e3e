package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_SectionsBecomePages(t *testing.T) {
	input := `# Attention Is All You Need

The abstract paragraph.

## Introduction

Intro text with *emphasis* and a [link](https://example.com).

## Method

Method text.
`
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "paper.md")
	if err != nil {
		t.Fatal(err)
	}

	if doc.Title != "Attention Is All You Need" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("pages = %d: %v", len(doc.Pages), doc.Pages)
	}
	if !strings.Contains(doc.Pages[0], "abstract paragraph") {
		t.Errorf("page 0 = %q", doc.Pages[0])
	}
	if !strings.HasPrefix(doc.Pages[1], "Introduction") {
		t.Errorf("page 1 = %q", doc.Pages[1])
	}
	if !strings.Contains(doc.Pages[1], "emphasis") {
		t.Errorf("inline formatting lost: %q", doc.Pages[1])
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader("Just one paragraph of text."), "plain.md")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "plain" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Pages) != 1 || !strings.Contains(doc.Pages[0], "one paragraph") {
		t.Errorf("pages = %v", doc.Pages)
	}
}
