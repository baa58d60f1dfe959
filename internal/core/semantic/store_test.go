package semantic

import (
	"testing"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

func embeddedDocs() []domain.Document {
	return []domain.Document{
		{ID: "a", Seq: 0, Embedding: []float32{1, 0}},
		{ID: "b", Seq: 1, Embedding: []float32{0.9, 0.1}},
		{ID: "c", Seq: 2, Embedding: []float32{0, 1}},
	}
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	store := NewStore(embeddedDocs())

	hits, err := store.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].DocumentID != "a" || hits[1].DocumentID != "b" {
		t.Fatalf("unexpected ranking: %s, %s", hits[0].DocumentID, hits[1].DocumentID)
	}
	if hits[0].Similarity < hits[1].Similarity {
		t.Fatalf("similarities out of order: %v", hits)
	}
}

func TestSearchTieBreaksBySequence(t *testing.T) {
	docs := []domain.Document{
		{ID: "z_later", Seq: 0, Embedding: []float32{1, 0}},
		{ID: "a_earlier", Seq: 1, Embedding: []float32{1, 0}},
	}
	store := NewStore(docs)

	hits, err := store.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if hits[0].DocumentID != "z_later" {
		t.Fatalf("tie-break must follow ingestion sequence, got %s first", hits[0].DocumentID)
	}
}

func TestSearchFailsWhileCoverageIncomplete(t *testing.T) {
	docs := append(embeddedDocs(), domain.Document{ID: "pending", Seq: 3})
	store := NewStore(docs)

	if _, err := store.Search([]float32{1, 0}, 2); !domain.IsKind(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}

	embedded, missing := store.Coverage()
	if embedded != 3 || missing != 1 {
		t.Fatalf("coverage = (%d, %d), want (3, 1)", embedded, missing)
	}
}

func TestSearchEmptyQueryVector(t *testing.T) {
	store := NewStore(embeddedDocs())
	if _, err := store.Search(nil, 2); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
