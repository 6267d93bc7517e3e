package summarize

import (
	"context"
	"fmt"

	"papersum/internal/llm"
)

// Position is a chunk's place in the document, which selects the prompt
// template for its summarization call.
type Position int

const (
	// PositionOnly is the sole chunk of a document that fit one budget.
	PositionOnly Position = iota
	PositionFirst
	PositionMiddle
	PositionLast
)

// PositionFor maps a chunk index within a chunk count to its Position.
func PositionFor(index, count int) Position {
	switch {
	case count <= 1:
		return PositionOnly
	case index == 0:
		return PositionFirst
	case index == count-1:
		return PositionLast
	default:
		return PositionMiddle
	}
}

const temperature = 0.3

// segmentPrompt builds the position-appropriate user prompt for one chunk.
func segmentPrompt(pos Position, chunk string) string {
	switch pos {
	case PositionOnly:
		return fmt.Sprintf(`Please summarize the following research paper. Cover the key findings, methodology,
and conclusions. Maintain academic language and focus on the most important details.

Research paper:
%s`, chunk)
	case PositionFirst:
		return fmt.Sprintf(`This is the beginning of a research paper. Please summarize this part focusing on the
introduction, research objectives, and initial methodology. This is part of a larger paper
that will be summarized separately.

Research paper beginning:
%s`, chunk)
	case PositionLast:
		return fmt.Sprintf(`This is the final part of a research paper. Please summarize this part focusing on
the final results, discussion, and conclusion. Connect to the earlier parts if possible.

Research paper ending:
%s`, chunk)
	default:
		return fmt.Sprintf(`This is a middle part of a research paper. Please summarize the key information, findings,
and methodology described in this section. This is part of a larger paper.

Research paper section:
%s`, chunk)
	}
}

// Segment issues one position-aware summarization call for a chunk and
// returns its partial summary. Each call is independent; concurrent
// invocations share nothing but the client.
func Segment(ctx context.Context, client llm.Client, chunk string, pos Position, level DetailLevel) (string, error) {
	system, maxTokens := segmentSystem(level)
	out, err := client.Complete(ctx, llm.Request{
		System:      system,
		Prompt:      segmentPrompt(pos, chunk),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summarize segment: %w", err)
	}
	return out, nil
}
