// Package parser converts uploaded paper files into plain extracted text.
// Every parser emits a flat, page-ordered Document; structure beyond page
// boundaries is not preserved because the pipeline consumes linear text.
package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"papersum/internal/document"
)

// ErrNoText marks an input that parsed cleanly but yielded no extractable
// text, such as a scanned-image PDF.
var ErrNoText = errors.New("no extractable text")

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename derives a fallback document title.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// build assembles a Document from page texts, dropping blank pages. It
// returns ErrNoText when nothing survives.
func build(title string, pages []string) (*document.Document, error) {
	doc := &document.Document{Title: title}
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		doc.Pages = append(doc.Pages, page)
	}
	if len(doc.Pages) == 0 {
		return nil, ErrNoText
	}
	return doc, nil
}
