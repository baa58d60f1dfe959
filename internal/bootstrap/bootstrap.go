package bootstrap

import (
	"context"
	"fmt"

	"github.com/papl-tools/papl-assistant/internal/config"
	"github.com/papl-tools/papl-assistant/internal/core/chunk"
	"github.com/papl-tools/papl-assistant/internal/core/intent"
	"github.com/papl-tools/papl-assistant/internal/core/ports"
	"github.com/papl-tools/papl-assistant/internal/core/usecase"
	"github.com/papl-tools/papl-assistant/internal/infrastructure/corpus/localfs"
	"github.com/papl-tools/papl-assistant/internal/infrastructure/llm/ollama"
	"github.com/papl-tools/papl-assistant/internal/infrastructure/queue/nats"
	"github.com/papl-tools/papl-assistant/internal/infrastructure/repository/postgres"
	"github.com/papl-tools/papl-assistant/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue         ports.MessageQueue
	SearchUC      ports.SearchService
	ContextUC     ports.ContextService
	AnswerUC      ports.AnswerService
	ReloadUC      ports.CorpusAdmin
	BackfillUC    ports.EmbeddingBackfill
	Conversations ports.ConversationReader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	cache := postgres.NewEmbeddingCache(db)
	if err := cache.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	conversationLog := postgres.NewConversationLog(db)

	source, err := localfs.New(cfg.CorpusDir)
	if err != nil {
		return nil, fmt.Errorf("init corpus source: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)
	embedder := ollama.NewResilientEmbedder(ollama.NewEmbedder(ollamaClient), executor)
	generator := ollama.NewResilientGenerator(ollama.NewGenerator(ollamaClient), executor)

	classifier, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}

	corpus := usecase.NewCorpus()
	reloadUC := usecase.NewReloadUseCase(source, chunk.New(), cache, queue, corpus)
	searchUC := usecase.NewSearchUseCase(corpus, classifier, embedder)
	contextUC := usecase.NewContextUseCase(searchUC)
	answerUC := usecase.NewAnswerUseCase(searchUC, generator, conversationLog)
	backfillUC := usecase.NewBackfillUseCase(corpus, embedder, cache)

	return &App{
		Config: cfg,

		Queue:         queue,
		SearchUC:      searchUC,
		ContextUC:     contextUC,
		AnswerUC:      answerUC,
		ReloadUC:      reloadUC,
		BackfillUC:    backfillUC,
		Conversations: conversationLog,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newClassifier(cfg config.Config) (*intent.Classifier, error) {
	if cfg.IntentPatternsPath != "" {
		classifier, err := intent.NewFromFile(cfg.IntentPatternsPath)
		if err != nil {
			return nil, fmt.Errorf("load intent patterns: %w", err)
		}
		return classifier, nil
	}
	classifier, err := intent.New()
	if err != nil {
		return nil, fmt.Errorf("load embedded intent patterns: %w", err)
	}
	return classifier, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
