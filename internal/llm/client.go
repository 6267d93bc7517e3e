package llm

import (
	"context"
	"fmt"
)

// Request is a single generation call: a system directive, a user prompt,
// and the hard output-token ceiling for the response.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Client issues generation requests. Implementations must be safe for
// concurrent use; the pipeline fans segment calls out across workers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

// RetryableError indicates a transient failure (rate limit, upstream 5xx)
// that is worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable llm error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
