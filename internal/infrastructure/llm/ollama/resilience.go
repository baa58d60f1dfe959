package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// ResilientEmbedder runs embedding calls through the shared executor
// and wraps exhausted transient failures as ErrEmbeddingUnavailable so
// the retrieval path can degrade to lexical-only serving.
type ResilientEmbedder struct {
	inner    *Embedder
	executor *resilience.Executor
}

func NewResilientEmbedder(inner *Embedder, executor *resilience.Executor) *ResilientEmbedder {
	return &ResilientEmbedder{inner: inner, executor: executor}
}

func (e *ResilientEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := e.executor.Execute(ctx, "ollama_embed", func(ctx context.Context) error {
		vectors, err := e.inner.Embed(ctx, texts)
		if err != nil {
			return err
		}
		out = vectors
		return nil
	}, classifyProviderError)
	if err != nil {
		return nil, wrapUnavailable(domain.ErrEmbeddingUnavailable, "embed", err)
	}
	return out, nil
}

func (e *ResilientEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := e.executor.Execute(ctx, "ollama_embed", func(ctx context.Context) error {
		vector, err := e.inner.EmbedQuery(ctx, text)
		if err != nil {
			return err
		}
		out = vector
		return nil
	}, classifyProviderError)
	if err != nil {
		return nil, wrapUnavailable(domain.ErrEmbeddingUnavailable, "embed query", err)
	}
	return out, nil
}

// ResilientGenerator is the generation-side counterpart; exhausted
// transient failures surface as ErrGenerationUnavailable.
type ResilientGenerator struct {
	inner    *Generator
	executor *resilience.Executor
}

func NewResilientGenerator(inner *Generator, executor *resilience.Executor) *ResilientGenerator {
	return &ResilientGenerator{inner: inner, executor: executor}
}

func (g *ResilientGenerator) GenerateAnswer(ctx context.Context, promptContext, question string) (string, error) {
	var out string
	err := g.executor.Execute(ctx, "ollama_generate", func(ctx context.Context) error {
		text, err := g.inner.GenerateAnswer(ctx, promptContext, question)
		if err != nil {
			return err
		}
		out = text
		return nil
	}, classifyProviderError)
	if err != nil {
		return "", wrapUnavailable(domain.ErrGenerationUnavailable, "generate answer", err)
	}
	return out, nil
}

func classifyProviderError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{
				Retryable:     true,
				RecordFailure: true,
			}
		}
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

// wrapUnavailable marks provider failures that the caller may react to
// (degrade, 503) with the matching sentinel. Cancellation passes
// through untouched.
func wrapUnavailable(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if domain.IsKind(err, kind) {
		return err
	}
	return domain.WrapError(kind, operation, err)
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
