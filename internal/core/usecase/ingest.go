package usecase

import (
	"context"
	"fmt"

	"github.com/papl-tools/papl-assistant/internal/core/chunk"
	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/index"
	"github.com/papl-tools/papl-assistant/internal/core/ports"
	"github.com/papl-tools/papl-assistant/internal/core/semantic"
)

// ReloadUseCase rebuilds the corpus from the record source: chunk,
// attach cached embeddings, build the lexical index and embedding
// store, swap the snapshot, then request backfill for documents whose
// vectors are missing or stale.
type ReloadUseCase struct {
	source  ports.RecordSource
	chunker *chunk.Chunker
	cache   ports.EmbeddingCache
	queue   ports.MessageQueue
	corpus  *Corpus
}

func NewReloadUseCase(
	source ports.RecordSource,
	chunker *chunk.Chunker,
	cache ports.EmbeddingCache,
	queue ports.MessageQueue,
	corpus *Corpus,
) *ReloadUseCase {
	return &ReloadUseCase{
		source:  source,
		chunker: chunker,
		cache:   cache,
		queue:   queue,
		corpus:  corpus,
	}
}

func (uc *ReloadUseCase) Reload(ctx context.Context) (*domain.IngestReport, error) {
	records, err := uc.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	docs, skipped := uc.chunker.Chunk(records)

	var pending []string
	for i := range docs {
		vector, ok, err := uc.cache.Get(ctx, docs[i].ID, docs[i].ContentHash)
		if err != nil {
			return nil, fmt.Errorf("read embedding cache: %w", err)
		}
		if ok {
			docs[i].Embedding = vector
			continue
		}
		pending = append(pending, docs[i].ID)
	}

	uc.corpus.swap(&corpusSnapshot{
		docs:  docs,
		index: index.Build(docs),
		store: semantic.NewStore(docs),
	})

	report := &domain.IngestReport{
		Documents: len(docs),
		Pending:   len(pending),
		Skipped:   skipped,
	}

	for _, id := range pending {
		if err := uc.queue.PublishEmbeddingRequested(ctx, id); err != nil {
			return report, fmt.Errorf("publish embedding request for %s: %w", id, err)
		}
	}
	return report, nil
}
