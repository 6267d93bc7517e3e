package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"papersum/internal/chunker"
	"papersum/internal/document"
	"papersum/internal/llm"
	"papersum/internal/summarize"
	"papersum/internal/token"
)

// scriptedClient answers segment, compile, reference, and keyword requests
// deterministically so pipeline behavior is observable.
func scriptedClient(t *testing.T) *llm.MockClient {
	t.Helper()
	return &llm.MockClient{Respond: func(req llm.Request) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "bibliographic reference"):
			return "NONE", nil
		case strings.Contains(req.Prompt, "JSON array"):
			return `[{"keyword":"chunking","score":7,"explanation":"splitting text"}]`, nil
		case strings.Contains(req.Prompt, "synthesize these summaries"):
			return "FINAL:" + req.Prompt, nil
		default:
			// Segment request: echo a stable digest of the chunk.
			return "part<" + firstWords(req.Prompt, 4) + ">", nil
		}
	}}
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func testDoc(sentences int) *document.Document {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		b.WriteString("Sentence number ")
		b.WriteString(strings.Repeat("x", i%9+1))
		b.WriteString(" carries unique content here. ")
	}
	return &document.Document{Title: "Test Paper", Pages: []string{strings.TrimSpace(b.String())}}
}

func newTestSummarizer(client llm.Client) *Summarizer {
	return NewSummarizer(client, token.NewWordCodec(), nil, Config{
		Budget:     60,
		MaxWorkers: 4,
	})
}

func TestSummarize_ParallelMatchesSequential(t *testing.T) {
	doc := testDoc(80)
	opts := Options{Level: summarize.LevelMedium, Method: chunker.MethodSentence}

	seq := opts
	seq.Sequential = true

	parallel, err := newTestSummarizer(scriptedClient(t)).Summarize(context.Background(), doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	sequential, err := newTestSummarizer(scriptedClient(t)).Summarize(context.Background(), doc, seq)
	if err != nil {
		t.Fatal(err)
	}

	if parallel.ChunkCount < 2 {
		t.Fatalf("expected multiple chunks, got %d", parallel.ChunkCount)
	}
	if parallel.Summary != sequential.Summary {
		t.Errorf("parallel and sequential runs produced different summaries")
	}
	if parallel.ChunkCount != sequential.ChunkCount || parallel.TokenCount != sequential.TokenCount {
		t.Errorf("run metadata differs: %+v vs %+v", parallel, sequential)
	}
}

func TestSummarize_PartialsKeepDocumentOrder(t *testing.T) {
	doc := testDoc(80)
	client := scriptedClient(t)
	result, err := newTestSummarizer(client).Summarize(context.Background(), doc, Options{
		Level:  summarize.LevelMedium,
		Method: chunker.MethodSentence,
	})
	if err != nil {
		t.Fatal(err)
	}

	// The compile prompt labels partials by position; chunk 1's partial must
	// precede chunk 2's.
	i1 := strings.Index(result.Summary, "Chunk 1 Summary:")
	i2 := strings.Index(result.Summary, "Chunk 2 Summary:")
	if i1 < 0 || i2 < 0 || i1 > i2 {
		t.Errorf("compile prompt ordering broken: %d, %d", i1, i2)
	}
}

func TestSummarize_EmptyDocumentFailsBeforeChunking(t *testing.T) {
	client := scriptedClient(t)
	doc := &document.Document{Title: "Empty"}

	_, err := newTestSummarizer(client).Summarize(context.Background(), doc, Options{})
	if err == nil {
		t.Fatal("expected an error")
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageExtract {
		t.Errorf("error = %v", err)
	}
	if len(client.Requests()) != 0 {
		t.Errorf("no model calls expected, got %d", len(client.Requests()))
	}
}

func TestSummarize_ChunkFailureAbortsPipeline(t *testing.T) {
	doc := testDoc(80)
	client := &llm.MockClient{Respond: func(req llm.Request) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "bibliographic reference"):
			return "NONE", nil
		case strings.Contains(req.Prompt, "JSON array"):
			return "[]", nil
		case strings.Contains(req.Prompt, "synthesize these summaries"):
			t.Error("compile must not run after a segment failure")
			return "", nil
		default:
			return "", errors.New("model rejected the request")
		}
	}}

	_, err := newTestSummarizer(client).Summarize(context.Background(), doc, Options{
		Level:  summarize.LevelMedium,
		Method: chunker.MethodSentence,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageSummarize {
		t.Errorf("error = %v", err)
	}
}

func TestSummarize_SingleChunkIdentity(t *testing.T) {
	doc := &document.Document{Title: "Tiny", Pages: []string{"A very short paper body."}}
	client := scriptedClient(t)

	result, err := newTestSummarizer(client).Summarize(context.Background(), doc, Options{
		Level:       summarize.LevelMedium,
		KeywordsOff: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ChunkCount != 1 {
		t.Fatalf("chunk count = %d", result.ChunkCount)
	}
	if !strings.HasPrefix(result.Summary, "part<") {
		t.Errorf("single-chunk summary should be the partial verbatim, got %q", result.Summary)
	}
	if result.ReferenceCount != 0 {
		t.Errorf("reference count = %d", result.ReferenceCount)
	}
}

func TestSummarize_KeywordsOff(t *testing.T) {
	doc := testDoc(10)
	client := scriptedClient(t)

	result, err := newTestSummarizer(client).Summarize(context.Background(), doc, Options{
		Level:       summarize.LevelMedium,
		KeywordsOff: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Keywords != nil {
		t.Errorf("keywords = %+v", result.Keywords)
	}
	for _, req := range client.Requests() {
		if strings.Contains(req.Prompt, "JSON array") {
			t.Error("keyword request issued despite KeywordsOff")
		}
	}
}

func TestSummarize_KeywordsIncluded(t *testing.T) {
	doc := testDoc(10)
	result, err := newTestSummarizer(scriptedClient(t)).Summarize(context.Background(), doc, Options{
		Level: summarize.LevelMedium,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Keywords) != 1 || result.Keywords[0].Keyword != "chunking" {
		t.Errorf("keywords = %+v", result.Keywords)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&llm.RetryableError{StatusCode: 429}) {
		t.Error("RetryableError should be retryable")
	}
	if IsRetryable(errors.New("plain failure")) {
		t.Error("plain errors are not retryable")
	}
}

func TestBackoff_GrowsAndStaysBounded(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		if d <= 0 {
			t.Errorf("attempt %d: non-positive backoff %v", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v above cap+jitter", attempt, d)
		}
	}
}
