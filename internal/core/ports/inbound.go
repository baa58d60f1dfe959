package ports

import (
	"context"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

// SearchService is the inbound contract for ranked retrieval.
type SearchService interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchOutcome, error)
}

// ContextService builds a generation-ready context for a query.
type ContextService interface {
	AnswerContext(ctx context.Context, query string, opts domain.SearchOptions, budget int) (*domain.ContextBlock, error)
}

// AnswerService is the inbound contract for full question answering.
type AnswerService interface {
	Answer(ctx context.Context, conversationID, question string, opts domain.SearchOptions, budget int) (*domain.Answer, error)
}

// CorpusAdmin reloads the corpus and reports the ingestion outcome.
type CorpusAdmin interface {
	Reload(ctx context.Context) (*domain.IngestReport, error)
}

// EmbeddingBackfill is the inbound contract for the async worker.
type EmbeddingBackfill interface {
	EmbedDocument(ctx context.Context, documentID string) error
}

// ConversationReader exposes the persisted conversation log.
type ConversationReader interface {
	ListRecent(ctx context.Context, conversationID string, limit int) ([]domain.Exchange, error)
}
