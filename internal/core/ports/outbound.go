package ports

import (
	"context"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

// RecordSource loads the ingestor's hand-off records, in a
// deterministic order.
type RecordSource interface {
	Load(ctx context.Context) ([]domain.RawRecord, error)
}

// Embedder builds vectors for document content and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator creates the final user-facing answer from the
// rendered context block. Citations must use the block's labels.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, promptContext, question string) (string, error)
}

// EmbeddingCache persists vectors across process restarts, keyed by
// document id and content hash. A stale hash is a cache miss.
type EmbeddingCache interface {
	Get(ctx context.Context, documentID, contentHash string) ([]float32, bool, error)
	Put(ctx context.Context, documentID, contentHash string, vector []float32) error
}

// MessageQueue carries embedding backfill requests between api and worker.
type MessageQueue interface {
	PublishEmbeddingRequested(ctx context.Context, documentID string) error
	SubscribeEmbeddingRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// ConversationLog persists question/answer exchanges.
type ConversationLog interface {
	Append(ctx context.Context, exchange domain.Exchange) error
	ListRecent(ctx context.Context, conversationID string, limit int) ([]domain.Exchange, error)
}
