package chunker

import (
	"strings"

	"papersum/internal/token"
)

// Method selects the chunking strategy.
type Method string

const (
	MethodSentence Method = "sentence"
	MethodToken    Method = "token"
)

// ParseMethod maps a request string to a Method, defaulting to sentence.
func ParseMethod(s string) Method {
	if Method(strings.ToLower(strings.TrimSpace(s))) == MethodToken {
		return MethodToken
	}
	return MethodSentence
}

// Chunk is a token-bounded contiguous slice of document text.
type Chunk struct {
	Text  string
	Index int
	First bool
	Last  bool
}

// Config controls chunking behavior.
type Config struct {
	Budget  int // Max tokens per chunk: model context minus reserved output allowance.
	Overlap int // Shared tokens between adjacent chunks (token method only).
}

// Split divides text into chunks whose encoded length stays within
// cfg.Budget, in document order. Text that fits the budget whole becomes a
// single chunk marked both first and last. Empty text yields no chunks.
func Split(text string, codec token.Codec, cfg Config, method Method) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if cfg.Budget <= 0 {
		cfg.Budget = 4096
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Budget {
		cfg.Overlap = 0
	}

	tokens := codec.Encode(text)
	if len(tokens) <= cfg.Budget {
		return []Chunk{{Text: text, Index: 0, First: true, Last: true}}
	}

	var parts []string
	if method == MethodToken {
		parts = splitByTokens(tokens, codec, cfg.Budget, cfg.Overlap)
	} else {
		parts = splitBySentences(text, codec, cfg.Budget)
	}

	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{
			Text:  p,
			Index: i,
			First: i == 0,
			Last:  i == len(parts)-1,
		}
	}
	return chunks
}

// splitBySentences greedily accumulates whole sentences up to the budget.
// A sentence is never split across chunks; a single sentence longer than
// the budget becomes its own oversized chunk.
func splitBySentences(text string, codec token.Codec, budget int) []string {
	sentences := SplitSentences(text)

	var chunks []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := codec.Count(sent)
		if currentTokens+sentTokens > budget && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// splitByTokens slides a fixed window over the token sequence. Step is
// budget-overlap, so adjacent windows share exactly overlap tokens; the
// final window may be shorter.
func splitByTokens(tokens []int, codec token.Codec, budget, overlap int) []string {
	step := budget - overlap
	var chunks []string
	for start := 0; start < len(tokens); start += step {
		end := start + budget
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, codec.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

// SplitSentences splits on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && isSpace(runes[i+1]) {
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
