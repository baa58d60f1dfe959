package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

type searchServiceFake struct {
	outcome *domain.SearchOutcome
	err     error
}

func (f *searchServiceFake) Search(context.Context, string, domain.SearchOptions) (*domain.SearchOutcome, error) {
	return f.outcome, f.err
}

type generatorFake struct {
	gotContext  string
	gotQuestion string
	reply       string
	err         error
	calls       int
}

func (f *generatorFake) GenerateAnswer(_ context.Context, promptContext, question string) (string, error) {
	f.calls++
	f.gotContext = promptContext
	f.gotQuestion = question
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type conversationLogFake struct {
	appended []domain.Exchange
	err      error
}

func (f *conversationLogFake) Append(_ context.Context, exchange domain.Exchange) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, exchange)
	return nil
}

func (f *conversationLogFake) ListRecent(_ context.Context, conversationID string, limit int) ([]domain.Exchange, error) {
	var out []domain.Exchange
	for _, e := range f.appended {
		if e.ConversationID == conversationID {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, domain.WrapError(domain.ErrConversationNotFound, "list exchanges", errors.New(conversationID))
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func answerOutcome() *domain.SearchOutcome {
	return &domain.SearchOutcome{
		Mode: domain.ModeLexical,
		Results: []domain.RetrievalResult{
			result("pricing_1", 0, "Support Item: Occupational Therapy", 9),
			result("rule_travel", 1, "Claiming Rule: Travel", 8),
		},
	}
}

func TestAnswerGroundsGenerationInAssembledContext(t *testing.T) {
	generator := &generatorFake{reply: "See Document 1."}
	log := &conversationLogFake{}
	uc := NewAnswerUseCase(&searchServiceFake{outcome: answerOutcome()}, generator, log)

	answer, err := uc.Answer(context.Background(), "conv-1", "occupational therapy price?", domain.SearchOptions{}, 500)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "See Document 1." {
		t.Fatalf("unexpected answer %q", answer.Text)
	}
	if !strings.Contains(generator.gotContext, "[Document 1 - GUIDANCE]") {
		t.Fatalf("generator context missing citation label:\n%s", generator.gotContext)
	}
	if generator.gotQuestion != "occupational therapy price?" {
		t.Fatalf("unexpected question %q", generator.gotQuestion)
	}

	if len(log.appended) != 1 {
		t.Fatalf("expected one exchange appended, got %d", len(log.appended))
	}
	exchange := log.appended[0]
	if exchange.ConversationID != "conv-1" || exchange.ID == "" {
		t.Fatalf("unexpected exchange %+v", exchange)
	}
	if len(exchange.Sources) != 2 || exchange.Sources[0] != "pricing_1" {
		t.Fatalf("unexpected sources %v", exchange.Sources)
	}
}

func TestAnswerEmptyRetrievalSkipsGenerator(t *testing.T) {
	outcome := &domain.SearchOutcome{Mode: domain.ModeLexical, Suggestion: "did you mean: therapy?"}
	generator := &generatorFake{reply: "should not be used"}
	log := &conversationLogFake{}
	uc := NewAnswerUseCase(&searchServiceFake{outcome: outcome}, generator, log)

	answer, err := uc.Answer(context.Background(), "conv-1", "theraq", domain.SearchOptions{}, 500)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if generator.calls != 0 {
		t.Fatalf("generator must not run without context")
	}
	if answer.Text != noContextReply {
		t.Fatalf("expected canned reply, got %q", answer.Text)
	}
	if answer.Suggestion != "did you mean: therapy?" {
		t.Fatalf("expected suggestion carried through, got %q", answer.Suggestion)
	}
	if len(log.appended) != 1 || len(log.appended[0].Sources) != 0 {
		t.Fatalf("empty exchange should still be logged, got %+v", log.appended)
	}
}

func TestAnswerPropagatesGenerationFailure(t *testing.T) {
	genErr := domain.WrapError(domain.ErrGenerationUnavailable, "generate", errors.New("model offline"))
	uc := NewAnswerUseCase(&searchServiceFake{outcome: answerOutcome()}, &generatorFake{err: genErr}, nil)

	if _, err := uc.Answer(context.Background(), "", "question", domain.SearchOptions{}, 500); !domain.IsKind(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}

func TestAnswerWithoutConversationSkipsLog(t *testing.T) {
	log := &conversationLogFake{}
	uc := NewAnswerUseCase(&searchServiceFake{outcome: answerOutcome()}, &generatorFake{reply: "ok"}, log)

	if _, err := uc.Answer(context.Background(), "", "question", domain.SearchOptions{}, 500); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(log.appended) != 0 {
		t.Fatalf("expected no log writes, got %+v", log.appended)
	}
}

func TestAnswerBudgetErrorsPassThrough(t *testing.T) {
	uc := NewAnswerUseCase(&searchServiceFake{outcome: answerOutcome()}, &generatorFake{reply: "ok"}, nil)

	if _, err := uc.Answer(context.Background(), "", "question", domain.SearchOptions{}, 3); !domain.IsKind(err, domain.ErrBudgetTooSmall) {
		t.Fatalf("expected ErrBudgetTooSmall, got %v", err)
	}
}
