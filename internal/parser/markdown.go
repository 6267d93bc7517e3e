package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"papersum/internal/document"
)

// MarkdownParser handles Markdown files using goldmark. Each top-level
// section (a heading and the text under it) becomes one page; the first h1
// becomes the document title.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	title := titleFromFilename(filename)
	var pages []string
	var current strings.Builder
	sawTitle := false

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			pages = append(pages, s)
		}
		current.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			headingText := string(extractInlineText(heading, src))
			if heading.Level == 1 && !sawTitle {
				title = headingText
				sawTitle = true
			}
			flush()
			current.WriteString(headingText)
			continue
		}
		if t := extractBlockText(n, src); t != "" {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(t)
		}
	}
	flush()

	return build(title, pages)
}

// extractBlockText gets the raw source text of a block node. Leaf blocks
// carry their source lines directly; container blocks (lists, quotes) are
// walked for the leaf blocks inside them.
func extractBlockText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := extractBlockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// extractInlineText flattens the inline children of a node to plain text.
func extractInlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
		} else {
			buf.WriteString(extractInlineText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
