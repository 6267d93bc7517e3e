package cli

import (
	"fmt"
	"os"

	"papersum/internal/document"
	"papersum/internal/parser"
)

// parseFile opens and parses one input file into a Document.
func parseFile(path string) (*document.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = cfg.PDFFallbackPdftotext
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := p.Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
