// Package pipeline orchestrates the summarization stages for one document:
// text extraction, reference and keyword extraction, chunking, per-chunk
// summarization with bounded concurrency, and final compilation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"papersum/internal/chunker"
	"papersum/internal/document"
	"papersum/internal/keywords"
	"papersum/internal/llm"
	"papersum/internal/references"
	"papersum/internal/summarize"
	"papersum/internal/token"
)

// Stage names used in StageError and log attributes.
const (
	StageExtract    = "extract"
	StageReferences = "references"
	StageKeywords   = "keywords"
	StageChunk      = "chunk"
	StageSummarize  = "summarize"
	StageCompile    = "compile"
)

// StageError attributes a pipeline failure to the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Config holds pipeline-wide settings, normally derived from the service
// configuration.
type Config struct {
	// Budget is the per-chunk token allowance: model context minus the
	// reserved output allowance.
	Budget  int
	Overlap int

	// MaxWorkers bounds concurrent segment calls; effective concurrency is
	// min(MaxWorkers, chunk count).
	MaxWorkers int

	MaxKeywords int
}

// Options select per-request behavior.
type Options struct {
	Level       summarize.DetailLevel
	Method      chunker.Method
	Sequential  bool
	Citations   bool
	KeywordsOff bool
}

// Result is the complete output of one pipeline run.
type Result struct {
	Summary        string             `json:"summary"`
	References     []string           `json:"references"`
	ReferenceCount int                `json:"referenceCount"`
	Keywords       []keywords.Keyword `json:"keywords"`
	HasCitations   bool               `json:"hasCitations"`
	ChunkCount     int                `json:"chunkCount"`
	TokenCount     int                `json:"tokenCount"`
}

// Summarizer runs the pipeline. Safe for concurrent use; each Summarize
// call is independent.
type Summarizer struct {
	client llm.Client
	codec  token.Codec
	refs   *references.Extractor
	log    *slog.Logger
	cfg    Config
}

func NewSummarizer(client llm.Client, codec token.Codec, log *slog.Logger, cfg Config) *Summarizer {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Budget <= 0 {
		cfg.Budget = 8192 - 1500
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 5
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = keywords.DefaultCount
	}
	return &Summarizer{
		client: client,
		codec:  codec,
		refs:   references.NewExtractor(client, log),
		log:    log,
		cfg:    cfg,
	}
}

// Summarize runs the full pipeline on a parsed document. Reference and
// keyword failures degrade (sentinel list, empty list); every other stage
// failure aborts the run with a StageError. No partial summary is ever
// returned.
func (s *Summarizer) Summarize(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	log := s.log.With("title", doc.Title, "level", string(opts.Level))
	start := time.Now()

	text := doc.Text()
	if doc.Empty() {
		return nil, &StageError{Stage: StageExtract, Err: fmt.Errorf("document contains no extractable text")}
	}

	refs, hasRefs := s.refs.Extract(ctx, text)
	log.Info("references extracted", "count", len(refs), "found", hasRefs)

	var kws []keywords.Keyword
	if !opts.KeywordsOff {
		kws = keywords.Extract(ctx, s.client, log, text, s.cfg.MaxKeywords)
		log.Info("keywords extracted", "count", len(kws))
	}

	tokenCount := s.codec.Count(text)
	chunks := chunker.Split(text, s.codec, chunker.Config{Budget: s.cfg.Budget, Overlap: s.cfg.Overlap}, opts.Method)
	if len(chunks) == 0 {
		return nil, &StageError{Stage: StageChunk, Err: fmt.Errorf("no chunks produced")}
	}
	log.Info("chunked document", "chunks", len(chunks), "tokens", tokenCount, "method", string(opts.Method))

	var partials []string
	var err error
	if opts.Sequential || len(chunks) == 1 {
		partials, err = s.summarizeSequential(ctx, chunks, opts.Level, log)
	} else {
		partials, err = s.summarizeParallel(ctx, chunks, opts.Level, log)
	}
	if err != nil {
		return nil, &StageError{Stage: StageSummarize, Err: err}
	}

	compileOpts := summarize.CompileOptions{Level: opts.Level, Citations: opts.Citations}
	if opts.Citations && hasRefs {
		compileOpts.AuthorYears = references.AuthorYears(refs, maxCitationRefs)
	}
	summary, err := summarize.Compile(ctx, s.client, partials, compileOpts)
	if err != nil {
		return nil, &StageError{Stage: StageCompile, Err: err}
	}

	log.Info("pipeline complete", "chunks", len(chunks), "duration", time.Since(start).Round(time.Millisecond))

	refCount := 0
	if hasRefs {
		refCount = len(refs)
	}
	return &Result{
		Summary:        summary,
		References:     refs,
		ReferenceCount: refCount,
		Keywords:       kws,
		HasCitations:   opts.Citations,
		ChunkCount:     len(chunks),
		TokenCount:     tokenCount,
	}, nil
}

// maxCitationRefs bounds how many reference entries are parsed into
// Author, Year hints before the compile cap applies.
const maxCitationRefs = 25

// summarizeSequential processes chunks one at a time in document order.
func (s *Summarizer) summarizeSequential(ctx context.Context, chunks []chunker.Chunk, level summarize.DetailLevel, log *slog.Logger) ([]string, error) {
	partials := make([]string, len(chunks))
	for i, chunk := range chunks {
		out, err := s.summarizeChunk(ctx, chunk, len(chunks), level, log)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		partials[i] = out
	}
	return partials, nil
}

// summarizeParallel fans chunks out across at most cfg.MaxWorkers goroutines
// and collects partials into their document positions. The first failure
// fails the whole batch once every in-flight call has returned.
func (s *Summarizer) summarizeParallel(ctx context.Context, chunks []chunker.Chunk, level summarize.DetailLevel, log *slog.Logger) ([]string, error) {
	type chunkResult struct {
		idx     int
		partial string
		err     error
	}

	workers := s.cfg.MaxWorkers
	if workers > len(chunks) {
		workers = len(chunks)
	}
	results := make(chan chunkResult, len(chunks))
	sem := make(chan struct{}, workers)

	for i, chunk := range chunks {
		sem <- struct{}{}
		go func(i int, chunk chunker.Chunk) {
			defer func() { <-sem }()
			out, err := s.summarizeChunk(ctx, chunk, len(chunks), level, log)
			results <- chunkResult{idx: i, partial: out, err: err}
		}(i, chunk)
	}

	partials := make([]string, len(chunks))
	var firstErr error
	for range chunks {
		r := <-results
		if r.err != nil {
			log.Error("segment summarization failed", "chunk", r.idx, "error", r.err)
			if firstErr == nil {
				firstErr = fmt.Errorf("chunk %d: %w", r.idx, r.err)
			}
			continue
		}
		partials[r.idx] = r.partial
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return partials, nil
}

// summarizeChunk issues one segment call with retries on transient errors.
func (s *Summarizer) summarizeChunk(ctx context.Context, chunk chunker.Chunk, count int, level summarize.DetailLevel, log *slog.Logger) (string, error) {
	pos := summarize.PositionFor(chunk.Index, count)

	var out string
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		out, lastErr = summarize.Segment(ctx, s.client, chunk.Text, pos, level)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable segment error", "chunk", chunk.Index, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return out, lastErr
}
