package refine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"papersum/internal/keywords"
	"papersum/internal/llm"
)

func TestRefine_RequestShape(t *testing.T) {
	client := &llm.MockClient{Respond: func(req llm.Request) (string, error) {
		return "  tightened summary  ", nil
	}}
	r := NewRefiner(client)

	out, err := r.Refine(context.Background(), "original summary text", "make it shorter")
	if err != nil {
		t.Fatal(err)
	}
	if out != "tightened summary" {
		t.Errorf("output not trimmed: %q", out)
	}

	reqs := client.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if !strings.Contains(req.System, "original summary text") {
		t.Error("system prompt missing the summary")
	}
	if !strings.Contains(req.Prompt, "make it shorter") {
		t.Error("prompt missing the user request")
	}
	if req.Temperature != 0.5 {
		t.Errorf("temperature = %v", req.Temperature)
	}
	if req.MaxTokens != 2000 {
		t.Errorf("maxTokens = %d", req.MaxTokens)
	}
}

func TestRefine_EmptyRequestErrors(t *testing.T) {
	client := &llm.MockClient{}
	r := NewRefiner(client)

	if _, err := r.Refine(context.Background(), "summary", "   "); err == nil {
		t.Fatal("expected error for blank request")
	}
	if len(client.Requests()) != 0 {
		t.Error("blank request should not reach the model")
	}
}

func TestAnswer_ContextAndHistory(t *testing.T) {
	client := &llm.MockClient{Respond: func(req llm.Request) (string, error) {
		return "the answer", nil
	}}
	r := NewRefiner(client)

	refs := []string{"Smith, J. (2020). A study.", "Lee, K. (2021). Another study."}
	kws := make([]keywords.Keyword, 12)
	for i := range kws {
		kws[i] = keywords.Keyword{Keyword: "term" + strings.Repeat("x", i), Score: 5}
	}
	history := make([]Exchange, 8)
	for i := range history {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history[i] = Exchange{Role: role, Content: fmt.Sprintf("turn %02d", i)}
	}

	out, err := r.Answer(context.Background(), "the summary", "what is studied?", refs, kws, history)
	if err != nil {
		t.Fatal(err)
	}
	if out != "the answer" {
		t.Errorf("answer = %q", out)
	}

	req := client.Requests()[0]
	if !strings.Contains(req.System, "the summary") {
		t.Error("system prompt missing the summary")
	}
	if !strings.Contains(req.System, refs[0]) || !strings.Contains(req.System, refs[1]) {
		t.Error("system prompt missing references")
	}
	if !strings.Contains(req.System, kws[9].Keyword) {
		t.Error("system prompt missing tenth keyword")
	}
	if strings.Contains(req.System, kws[10].Keyword) {
		t.Error("keyword context should stop at ten terms")
	}
	if strings.Contains(req.Prompt, history[0].Content) || strings.Contains(req.Prompt, history[1].Content) {
		t.Error("history older than the window leaked into the prompt")
	}
	if !strings.Contains(req.Prompt, "User: "+history[2].Content) {
		t.Error("oldest in-window turn missing from the prompt")
	}
	if !strings.Contains(req.Prompt, "Assistant: "+history[7].Content) {
		t.Error("latest assistant turn missing from the prompt")
	}
	if !strings.HasSuffix(req.Prompt, "what is studied?") {
		t.Errorf("prompt does not end with the question: %q", req.Prompt)
	}
	if req.Temperature != 0.7 {
		t.Errorf("temperature = %v", req.Temperature)
	}
	if req.MaxTokens != 800 {
		t.Errorf("maxTokens = %d", req.MaxTokens)
	}
}

func TestAnswer_NoHistoryPromptIsBareQuestion(t *testing.T) {
	client := &llm.MockClient{}
	r := NewRefiner(client)

	if _, err := r.Answer(context.Background(), "summary", "why?", nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := client.Requests()[0].Prompt; got != "why?" {
		t.Errorf("prompt = %q", got)
	}
}

func TestAnswer_EmptyQuestionErrors(t *testing.T) {
	r := NewRefiner(&llm.MockClient{})
	if _, err := r.Answer(context.Background(), "summary", "", nil, nil, nil); err == nil {
		t.Fatal("expected error for empty question")
	}
}
