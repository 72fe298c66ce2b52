// Package transport talks to the model endpoint. Two endpoint shapes are
// supported: a generic analyze endpoint and Azure OpenAI chat completions.
// The shape is selected from the configured URL.
package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/argus-ci/argus/internal/analysis"
	"github.com/argus-ci/argus/internal/config"
)

// Request is one call to the model endpoint.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Payload      analysis.Request
}

// Response is the raw model output. Structured is set when the endpoint
// returned a top-level JSON object body; Content always carries the text
// form (for chat completions, the first choice's message content).
type Response struct {
	Content    string
	Structured []byte
	TokensUsed int
}

// Caller is the model transport abstraction.
type Caller interface {
	Call(ctx context.Context, req Request) (Response, error)
	Name() string
}

const azureHostMarker = "openai.azure.com"

// New creates a caller for the configured endpoint. Azure OpenAI is detected
// by hostname substring; everything else is treated as a generic analyze
// endpoint.
func New(cfg config.Config) (Caller, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("model endpoint is not configured")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if strings.Contains(cfg.Endpoint, azureHostMarker) {
		return newAzureOpenAI(cfg.Endpoint, cfg.APIKey, cfg.Deployment, cfg.APIVersion, timeout)
	}
	return newGeneric(cfg.Endpoint, cfg.APIKey, timeout), nil
}

// WithRetry wraps a caller with bounded retries. Transport failures (non-2xx,
// network error, timeout) are retried with exponential backoff capped at 10s;
// auth failures are not.
func WithRetry(c Caller, retryCount int) Caller {
	if retryCount < 1 {
		retryCount = 1
	}
	return &retryCaller{inner: c, attempts: retryCount}
}

type retryCaller struct {
	inner    Caller
	attempts int
}

func (r *retryCaller) Name() string { return r.inner.Name() }

func (r *retryCaller) Call(ctx context.Context, req Request) (Response, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err := r.inner.Call(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if IsAuthError(err) {
			return Response{}, err
		}
		if attempt < r.attempts {
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(Backoff(attempt)):
			}
		}
	}
	return Response{}, fmt.Errorf("all %d attempts failed: %w", r.attempts, lastErr)
}

// Backoff returns the delay before the attempt following attempt n,
// min(1000*2^(n-1), 10000) milliseconds.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	ms := 1000 * (1 << uint(attempt-1))
	if ms > 10000 {
		ms = 10000
	}
	return time.Duration(ms) * time.Millisecond
}
