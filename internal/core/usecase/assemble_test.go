package usecase

import (
	"strings"
	"testing"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

func result(id string, seq int, content string, score float64) domain.RetrievalResult {
	return domain.RetrievalResult{
		Document: domain.Document{ID: id, Seq: seq, SourceKind: domain.SourceGuidance, Title: id, Content: content},
		Score:    score,
	}
}

func TestAssembleContextPacksInRankOrder(t *testing.T) {
	results := []domain.RetrievalResult{
		result("first", 0, strings.Repeat("a", 40), 9),
		result("second", 1, strings.Repeat("b", 40), 8),
	}

	block, err := AssembleContext(results, 100)
	if err != nil {
		t.Fatalf("AssembleContext() error = %v", err)
	}
	if len(block.Entries) != 2 || block.Size != 80 {
		t.Fatalf("unexpected block: entries=%d size=%d", len(block.Entries), block.Size)
	}
	if block.Entries[0].Label != "Document 1" || block.Entries[1].Label != "Document 2" {
		t.Fatalf("unexpected labels %q %q", block.Entries[0].Label, block.Entries[1].Label)
	}
	if block.Entries[0].DocumentID != "first" {
		t.Fatalf("rank order not preserved: %+v", block.Entries)
	}
}

func TestAssembleContextSkipsOversizeAndContinues(t *testing.T) {
	results := []domain.RetrievalResult{
		result("small", 0, strings.Repeat("a", 30), 9),
		result("huge", 1, strings.Repeat("b", 500), 8),
		result("fits", 2, strings.Repeat("c", 30), 7),
	}

	block, err := AssembleContext(results, 100)
	if err != nil {
		t.Fatalf("AssembleContext() error = %v", err)
	}
	if len(block.Entries) != 2 {
		t.Fatalf("expected huge skipped, got %+v", block.Entries)
	}
	if block.Entries[1].DocumentID != "fits" || block.Entries[1].Label != "Document 2" {
		t.Fatalf("labels must follow inclusion order, got %+v", block.Entries[1])
	}
	// Included whole or not at all: no truncated content.
	for _, e := range block.Entries {
		if len(e.Content) != 30 {
			t.Fatalf("partial inclusion of %s: %d bytes", e.DocumentID, len(e.Content))
		}
	}
}

func TestAssembleContextBudgetTooSmallOnlyForTopResult(t *testing.T) {
	results := []domain.RetrievalResult{
		result("huge", 0, strings.Repeat("a", 500), 9),
		result("small", 1, "tiny", 8),
	}
	if _, err := AssembleContext(results, 100); !domain.IsKind(err, domain.ErrBudgetTooSmall) {
		t.Fatalf("expected ErrBudgetTooSmall, got %v", err)
	}
}

func TestAssembleContextEdgeCases(t *testing.T) {
	block, err := AssembleContext(nil, 100)
	if err != nil {
		t.Fatalf("empty results must assemble cleanly, got %v", err)
	}
	if len(block.Entries) != 0 || block.Size != 0 {
		t.Fatalf("expected empty block, got %+v", block)
	}

	if _, err := AssembleContext(nil, 0); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero budget, got %v", err)
	}
	if _, err := AssembleContext(nil, -5); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative budget, got %v", err)
	}
}

func TestContextBlockRenderLabelsEntries(t *testing.T) {
	results := []domain.RetrievalResult{
		result("a", 0, "alpha content", 9),
	}
	results[0].Document.SourceKind = domain.SourcePricing

	block, err := AssembleContext(results, 100)
	if err != nil {
		t.Fatalf("AssembleContext() error = %v", err)
	}
	rendered := block.Render()
	if !strings.Contains(rendered, "[Document 1 - PRICING]") {
		t.Fatalf("expected labeled block, got %q", rendered)
	}
	if !strings.Contains(rendered, "alpha content") {
		t.Fatalf("expected content in render, got %q", rendered)
	}
}
