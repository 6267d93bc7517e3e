package token

import (
	"strings"
	"sync"
)

// WordCodec is a deterministic whitespace-word codec. One token per word,
// vocabulary built as text is seen. It backs tests and offline runs where
// the BPE vocabulary cannot be fetched; chunk sizes are then word-accurate
// rather than BPE-accurate.
type WordCodec struct {
	mu    sync.Mutex
	ids   map[string]int
	words []string
}

func NewWordCodec() *WordCodec {
	return &WordCodec{ids: make(map[string]int)}
}

func (c *WordCodec) Encode(text string) []int {
	fields := strings.Fields(text)
	tokens := make([]int, len(fields))

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range fields {
		id, ok := c.ids[w]
		if !ok {
			id = len(c.words)
			c.ids[w] = id
			c.words = append(c.words, w)
		}
		tokens[i] = id
	}
	return tokens
}

func (c *WordCodec) Decode(tokens []int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t >= 0 && t < len(c.words) {
			fields = append(fields, c.words[t])
		}
	}
	return strings.Join(fields, " ")
}

func (c *WordCodec) Count(text string) int {
	return len(strings.Fields(text))
}
