// Package refine post-processes a finished summary: rewriting it to a
// reader's request, or answering questions about the paper with the summary
// as the knowledge source and the extracted references and keywords as
// context.
package refine

import (
	"context"
	"fmt"
	"strings"

	"papersum/internal/keywords"
	"papersum/internal/llm"
)

// historyWindow bounds how many prior exchanges are replayed per call.
const historyWindow = 6

// maxKeywordContext bounds how many keywords are offered as context.
const maxKeywordContext = 10

// Exchange is one prior turn of a refinement or question conversation.
type Exchange struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Refiner issues refinement and question-answering calls over an existing
// summary. Stateless; callers carry the conversation history.
type Refiner struct {
	client llm.Client
}

func NewRefiner(client llm.Client) *Refiner {
	return &Refiner{client: client}
}

const refineSystem = `You are an expert academic summary refiner.
Your task is to modify the provided academic summary based on the user's request.
Only return the refined summary text - no explanations, no prefixes, just the updated summary.
The summary should be comprehensive, well-structured, and maintain academic integrity.`

// Refine rewrites a summary according to the request and returns the new
// summary text. The original is returned unchanged only by the model's
// choice, never by fallback; failures surface as errors.
func (r *Refiner) Refine(ctx context.Context, summary, request string) (string, error) {
	if strings.TrimSpace(request) == "" {
		return "", fmt.Errorf("refine summary: empty request")
	}

	out, err := r.client.Complete(ctx, llm.Request{
		System:      refineSystem + "\n\nOriginal summary to refine:\n" + summary,
		Prompt:      "Please modify this summary according to this request: " + request,
		Temperature: 0.5,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", fmt.Errorf("refine summary: %w", err)
	}
	return strings.TrimSpace(out), nil
}

const answerSystem = `You are an expert academic assistant who answers questions about research papers.
Your task is to answer questions based on the provided academic summary.
Use the summary as your primary knowledge source, but you can reference citations if available.
Give concise, accurate answers that directly address the user's question.
IMPORTANT: DO NOT include the full summary or large chunks of it in your responses.
DO NOT start your response with a summary or overview of the paper.
Focus ONLY on answering the specific question using information from the summary.
If the summary doesn't contain enough information to fully answer the question, acknowledge the limitations of your answer.`

// Answer responds to a question about the summarized paper without
// modifying the summary.
func (r *Refiner) Answer(ctx context.Context, summary, question string, refs []string, kws []keywords.Keyword, history []Exchange) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("answer question: empty question")
	}

	var system strings.Builder
	system.WriteString(answerSystem)
	system.WriteString("\n\nSummary of the research paper:\n")
	system.WriteString(summary)

	if len(refs) > 0 {
		system.WriteString("\n\nReferences:\n")
		system.WriteString(strings.Join(refs, "\n"))
	}
	if len(kws) > 0 {
		terms := make([]string, 0, maxKeywordContext)
		for _, kw := range kws {
			terms = append(terms, kw.Keyword)
			if len(terms) >= maxKeywordContext {
				break
			}
		}
		system.WriteString("\n\nKeywords: ")
		system.WriteString(strings.Join(terms, ", "))
	}

	out, err := r.client.Complete(ctx, llm.Request{
		System:      system.String(),
		Prompt:      transcript(history) + question,
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// transcript renders the tail of the conversation so the model sees prior
// turns before the current message.
func transcript(history []Exchange) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var b strings.Builder
	for _, ex := range history {
		label := "User"
		if ex.Role == "assistant" {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, ex.Content)
	}
	if b.Len() > 0 {
		b.WriteString("\nUser question: ")
	}
	return b.String()
}
