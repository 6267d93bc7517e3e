package parser

import (
	"bufio"
	"io"
	"strings"

	"papersum/internal/document"
)

// TextParser handles plain text files. Paragraphs separated by blank lines
// become pages so page ordering survives into the Document.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pages []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				pages = append(pages, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		pages = append(pages, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return build(titleFromFilename(filename), pages)
}
