package usecase

import (
	"context"
	"fmt"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/ports"
)

// BackfillUseCase computes and caches the embedding for one document.
// It runs in the worker against the worker's own corpus snapshot; the
// api picks cached vectors up on its next reload.
type BackfillUseCase struct {
	corpus   *Corpus
	embedder ports.Embedder
	cache    ports.EmbeddingCache
}

func NewBackfillUseCase(corpus *Corpus, embedder ports.Embedder, cache ports.EmbeddingCache) *BackfillUseCase {
	return &BackfillUseCase{
		corpus:   corpus,
		embedder: embedder,
		cache:    cache,
	}
}

func (uc *BackfillUseCase) EmbedDocument(ctx context.Context, documentID string) error {
	doc, ok := uc.corpus.Lookup(documentID)
	if !ok {
		return domain.WrapError(domain.ErrInvalidInput, "embed document", fmt.Errorf("unknown document id %q", documentID))
	}

	vectors, err := uc.embedder.Embed(ctx, []string{doc.Content})
	if err != nil {
		return fmt.Errorf("embed document %s: %w", documentID, err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return domain.WrapError(domain.ErrEmbeddingUnavailable, "embed document", fmt.Errorf("provider returned %d vectors", len(vectors)))
	}

	if err := uc.cache.Put(ctx, doc.ID, doc.ContentHash, vectors[0]); err != nil {
		return fmt.Errorf("cache embedding for %s: %w", documentID, err)
	}
	return nil
}
