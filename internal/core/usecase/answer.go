package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/ports"
)

const noContextReply = "I couldn't find relevant information in the PAPL documents to answer your question."

// AnswerUseCase runs the full question path: retrieve, assemble a
// budgeted context, generate an answer grounded in it, and append the
// exchange to the conversation log when a conversation id is given.
// When retrieval is empty it returns the canned no-context reply with
// the retrieval suggestion instead of calling the generator.
type AnswerUseCase struct {
	search    ports.SearchService
	generator ports.AnswerGenerator
	log       ports.ConversationLog
}

func NewAnswerUseCase(search ports.SearchService, generator ports.AnswerGenerator, log ports.ConversationLog) *AnswerUseCase {
	return &AnswerUseCase{
		search:    search,
		generator: generator,
		log:       log,
	}
}

func (uc *AnswerUseCase) Answer(
	ctx context.Context,
	conversationID, question string,
	opts domain.SearchOptions,
	budget int,
) (*domain.Answer, error) {
	outcome, err := uc.search.Search(ctx, question, opts)
	if err != nil {
		return nil, fmt.Errorf("retrieve for answer: %w", err)
	}

	if len(outcome.Results) == 0 {
		answer := &domain.Answer{
			Text:       noContextReply,
			Context:    domain.ContextBlock{},
			Suggestion: outcome.Suggestion,
		}
		if err := uc.append(ctx, conversationID, question, answer); err != nil {
			return nil, err
		}
		return answer, nil
	}

	block, err := AssembleContext(outcome.Results, budget)
	if err != nil {
		return nil, err
	}

	text, err := uc.generator.GenerateAnswer(ctx, block.Render(), question)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := &domain.Answer{Text: text, Context: *block}
	if err := uc.append(ctx, conversationID, question, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (uc *AnswerUseCase) append(ctx context.Context, conversationID, question string, answer *domain.Answer) error {
	if conversationID == "" || uc.log == nil {
		return nil
	}

	sources := make([]string, 0, len(answer.Context.Entries))
	for _, entry := range answer.Context.Entries {
		sources = append(sources, entry.DocumentID)
	}

	exchange := domain.Exchange{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Question:       question,
		Answer:         answer.Text,
		Sources:        sources,
		CreatedAt:      time.Now().UTC(),
	}
	if err := uc.log.Append(ctx, exchange); err != nil {
		return fmt.Errorf("append conversation exchange: %w", err)
	}
	return nil
}
