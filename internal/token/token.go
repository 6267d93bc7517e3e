package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Codec converts text to a countable, reversible token sequence for one
// model vocabulary. Decoding an encoded sequence yields text that encodes
// back to the same sequence; byte-identity with the original input is not
// guaranteed at encoder boundaries.
type Codec interface {
	Encode(text string) []int
	Decode(tokens []int) string
	Count(text string) int
}

// ForModel returns the BPE codec for a model identifier, falling back to
// cl100k_base for models tiktoken does not know yet.
func ForModel(model string) (Codec, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("load tokenizer for %s: %w", model, err)
		}
	}
	return &bpeCodec{enc: enc}, nil
}

type bpeCodec struct {
	enc *tiktoken.Tiktoken
}

func (c *bpeCodec) Encode(text string) []int {
	return c.enc.Encode(text, nil, nil)
}

func (c *bpeCodec) Decode(tokens []int) string {
	return c.enc.Decode(tokens)
}

func (c *bpeCodec) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
