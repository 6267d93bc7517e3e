package document

import "strings"

// Document is the extracted text of one source file, in page order.
// Parsers skip pages that yield no extractable text, so every entry in
// Pages is non-empty.
type Document struct {
	Title string   // Document title (from metadata or filename)
	Pages []string // Page text in source order
}

// Text joins all pages into the single string the pipeline consumes.
func (d *Document) Text() string {
	return strings.Join(d.Pages, "\n")
}

// Empty reports whether the document yielded no extractable text.
func (d *Document) Empty() bool {
	for _, p := range d.Pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
