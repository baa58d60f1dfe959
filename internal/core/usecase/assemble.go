package usecase

import (
	"context"
	"fmt"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/ports"
)

// AssembleContext greedily packs ranked results into a character
// budget. A document is included whole or not at all; one that exceeds
// the remaining budget is skipped so later, smaller documents can still
// fit. Citation labels follow inclusion order.
func AssembleContext(results []domain.RetrievalResult, budget int) (*domain.ContextBlock, error) {
	if budget <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "assemble context", fmt.Errorf("budget must be positive, got %d", budget))
	}

	block := &domain.ContextBlock{Budget: budget}
	if len(results) == 0 {
		return block, nil
	}
	if len(results[0].Document.Content) > budget {
		return nil, domain.WrapError(domain.ErrBudgetTooSmall, "assemble context",
			fmt.Errorf("top result needs %d of %d", len(results[0].Document.Content), budget))
	}

	for _, result := range results {
		size := len(result.Document.Content)
		if block.Size+size > budget {
			continue
		}
		block.Entries = append(block.Entries, domain.ContextEntry{
			Label:      fmt.Sprintf("Document %d", len(block.Entries)+1),
			SourceKind: result.Document.SourceKind,
			DocumentID: result.Document.ID,
			Content:    result.Document.Content,
		})
		block.Size += size
	}
	return block, nil
}

// ContextUseCase exposes budgeted context assembly as a service:
// retrieve, then pack the ranked results.
type ContextUseCase struct {
	search ports.SearchService
}

func NewContextUseCase(search ports.SearchService) *ContextUseCase {
	return &ContextUseCase{search: search}
}

func (uc *ContextUseCase) AnswerContext(ctx context.Context, query string, opts domain.SearchOptions, budget int) (*domain.ContextBlock, error) {
	outcome, err := uc.search.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("retrieve for context: %w", err)
	}
	return AssembleContext(outcome.Results, budget)
}
