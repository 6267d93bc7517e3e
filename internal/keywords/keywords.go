// Package keywords extracts salient terms from paper text through one
// structured-output generation request. Parse failures degrade to an empty
// list; they never abort a summarization request.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"papersum/internal/llm"
)

// DefaultCount is the number of keywords requested when the caller does
// not override it.
const DefaultCount = 8

// Input is truncated to the abstract/introduction region, where topical
// density is highest.
const maxInputChars = 10000

// Keyword is one salient term with its importance score and a short
// explanation for readers new to the field.
type Keyword struct {
	Keyword     string `json:"keyword"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// Extract asks the model for up to n keywords. Any request or parse
// failure returns an empty list.
func Extract(ctx context.Context, client llm.Client, log *slog.Logger, text string, n int) []Keyword {
	if log == nil {
		log = slog.Default()
	}
	if n <= 0 {
		n = DefaultCount
	}
	if len(text) > maxInputChars {
		cut := maxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	prompt := fmt.Sprintf(`Extract the %d most important keywords from this research paper excerpt. Respond with ONLY a JSON array, no other text. Each element must be an object with exactly these fields:
- "keyword": the term (string)
- "score": importance from 0 to 10 (integer)
- "explanation": one sentence explaining the term for a non-expert (string)

Excerpt:
%s`, n, text)

	out, err := client.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   1000,
	})
	if err != nil {
		log.Warn("keyword extraction request failed", "error", err)
		return nil
	}

	kws, err := Parse(out)
	if err != nil {
		log.Warn("keyword extraction returned unparseable output", "error", err)
		return nil
	}
	return clamp(kws, n)
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// Parse recovers the keyword array from model output. Models wrap JSON in
// prose, code fences, or a {"keywords": [...]} object; all three shapes
// are tolerated.
func Parse(out string) ([]Keyword, error) {
	out = strings.TrimSpace(out)
	if m := codeFenceRe.FindStringSubmatch(out); len(m) > 1 {
		out = m[1]
	}

	if arr := bracketSpan(out, '[', ']'); arr != "" {
		var kws []Keyword
		if err := json.Unmarshal([]byte(arr), &kws); err == nil {
			return kws, nil
		}
	}

	if obj := bracketSpan(out, '{', '}'); obj != "" {
		var wrapper struct {
			Keywords []Keyword `json:"keywords"`
		}
		if err := json.Unmarshal([]byte(obj), &wrapper); err == nil && wrapper.Keywords != nil {
			return wrapper.Keywords, nil
		}
	}

	return nil, fmt.Errorf("no keyword JSON found in %q", preview(out))
}

// bracketSpan returns the substring from the first open bracket to its
// balanced close, skipping brackets inside JSON strings.
func bracketSpan(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// clamp drops empty terms, bounds scores to 0-10, and caps the list.
func clamp(kws []Keyword, n int) []Keyword {
	var out []Keyword
	for _, kw := range kws {
		kw.Keyword = strings.TrimSpace(kw.Keyword)
		if kw.Keyword == "" {
			continue
		}
		if kw.Score < 0 {
			kw.Score = 0
		}
		if kw.Score > 10 {
			kw.Score = 10
		}
		out = append(out, kw)
		if len(out) >= n {
			break
		}
	}
	return out
}

func preview(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
