package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

type vectorEmbedderFake struct {
	vectors [][]float32
	err     error
	gotText string
}

func (f *vectorEmbedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) > 0 {
		f.gotText = texts[0]
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func (f *vectorEmbedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[0], nil
}

func TestEmbedDocumentCachesVector(t *testing.T) {
	docs := []domain.Document{
		{ID: "guidance_0", Seq: 0, SourceKind: domain.SourceGuidance, Title: "T", Content: "body text", ContentHash: "abc"},
	}
	corpus := corpusWith(t, docs)
	embedder := &vectorEmbedderFake{vectors: [][]float32{{0.5, 0.5}}}
	cache := newEmbeddingCacheFake()
	uc := NewBackfillUseCase(corpus, embedder, cache)

	if err := uc.EmbedDocument(context.Background(), "guidance_0"); err != nil {
		t.Fatalf("EmbedDocument() error = %v", err)
	}
	if embedder.gotText != "body text" {
		t.Fatalf("expected document content embedded, got %q", embedder.gotText)
	}
	if vector, ok := cache.puts["guidance_0"]; !ok || len(vector) != 2 {
		t.Fatalf("expected vector cached, got %v", cache.puts)
	}
	if cache.hashes["guidance_0"] != "abc" {
		t.Fatalf("expected content hash stored, got %q", cache.hashes["guidance_0"])
	}
}

func TestEmbedDocumentUnknownID(t *testing.T) {
	uc := NewBackfillUseCase(corpusWith(t, nil), &vectorEmbedderFake{}, newEmbeddingCacheFake())
	if err := uc.EmbedDocument(context.Background(), "nope"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEmbedDocumentProviderFailures(t *testing.T) {
	docs := []domain.Document{
		{ID: "guidance_0", Seq: 0, SourceKind: domain.SourceGuidance, Title: "T", Content: "body", ContentHash: "abc"},
	}

	uc := NewBackfillUseCase(corpusWith(t, docs), &vectorEmbedderFake{err: errors.New("offline")}, newEmbeddingCacheFake())
	if err := uc.EmbedDocument(context.Background(), "guidance_0"); err == nil {
		t.Fatalf("expected provider error")
	}

	uc = NewBackfillUseCase(corpusWith(t, docs), &vectorEmbedderFake{vectors: [][]float32{}}, newEmbeddingCacheFake())
	if err := uc.EmbedDocument(context.Background(), "guidance_0"); !domain.IsKind(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable for empty result, got %v", err)
	}

	cache := newEmbeddingCacheFake()
	cache.putErr = errors.New("db down")
	uc = NewBackfillUseCase(corpusWith(t, docs), &vectorEmbedderFake{vectors: [][]float32{{1}}}, cache)
	if err := uc.EmbedDocument(context.Background(), "guidance_0"); err == nil {
		t.Fatalf("expected cache error")
	}
}
