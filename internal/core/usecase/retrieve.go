package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/index"
	"github.com/papl-tools/papl-assistant/internal/core/intent"
	"github.com/papl-tools/papl-assistant/internal/core/ports"
)

const (
	defaultMaxResults  = 20
	defaultBlendWeight = 0.5
)

// SearchUseCase is the query orchestrator: it classifies the query,
// runs the lexical path over the current snapshot, optionally blends in
// semantic neighbours, and returns a ranked, deduplicated result set.
// An empty set is a normal outcome and carries a suggestion.
type SearchUseCase struct {
	corpus     *Corpus
	classifier *intent.Classifier
	embedder   ports.Embedder
}

func NewSearchUseCase(corpus *Corpus, classifier *intent.Classifier, embedder ports.Embedder) *SearchUseCase {
	return &SearchUseCase{
		corpus:     corpus,
		classifier: classifier,
		embedder:   embedder,
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchOutcome, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("query is empty"))
	}
	snap := uc.corpus.snapshot()
	if snap == nil {
		return nil, domain.WrapError(domain.ErrTemporary, "search", fmt.Errorf("corpus not loaded"))
	}

	qi := uc.classifier.Classify(query)
	applyFilterOverrides(&qi, opts)

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	blendWeight := opts.BlendWeight
	if blendWeight <= 0 || blendWeight > 1 {
		blendWeight = defaultBlendWeight
	}

	terms := index.UniqueTerms(query)
	filter := hardFilter(qi)
	results := snap.index.Search(terms, qi, filter)
	mode := domain.ModeLexical

	if opts.Semantic {
		hits, err := uc.semanticHits(ctx, snap, query, maxResults)
		if err == nil {
			results = blendCandidates(results, hits, snap, filter, blendWeight)
			mode = domain.ModeHybrid
		} else if !degradable(err) {
			return nil, err
		}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	outcome := &domain.SearchOutcome{
		Intent:  qi,
		Mode:    mode,
		Results: results,
	}
	if len(results) == 0 {
		outcome.Suggestion = buildSuggestion(snap.index, terms, qi)
	}
	return outcome, nil
}

func (uc *SearchUseCase) semanticHits(ctx context.Context, snap *corpusSnapshot, query string, topK int) ([]domain.SemanticHit, error) {
	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := snap.store.Search(queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("semantic candidates: %w", err)
	}
	return hits, nil
}

// degradable reports whether a semantic-path failure may fall back to
// lexical-only serving. The served mode stays visible to the caller.
func degradable(err error) bool {
	return domain.IsKind(err, domain.ErrEmbeddingUnavailable)
}

func applyFilterOverrides(qi *domain.QueryIntent, opts domain.SearchOptions) {
	if opts.Region != "" {
		qi.Region = strings.ToUpper(opts.Region)
	}
	if opts.Category != "" {
		qi.Category = strings.ToLower(opts.Category)
	}
	if opts.Framework != "" {
		qi.Framework = strings.ToLower(opts.Framework)
	}
}

// hardFilter admits documents passing the category and framework
// filters. The region filter stays a scoring bonus: pricing documents
// usually price every region, so excluding on region would mostly
// return nothing. Framework only binds documents that declare one.
func hardFilter(qi domain.QueryIntent) func(domain.Document) bool {
	if qi.Category == "" && qi.Framework == "" {
		return nil
	}
	return func(doc domain.Document) bool {
		if qi.Category != "" && !strings.EqualFold(doc.Category, qi.Category) {
			return false
		}
		if qi.Framework != "" {
			if declared, ok := doc.Metadata["framework"]; ok && !strings.EqualFold(declared, qi.Framework) {
				return false
			}
		}
		return true
	}
}

// blendCandidates merges the lexical and semantic paths into one
// ranking: lexical scores are max-normalized, cosine similarity is
// clamped at zero, and each document gets
// weight*lexical + (1-weight)*similarity. Documents reached by only one
// path keep the other component at zero.
func blendCandidates(
	lexical []domain.RetrievalResult,
	hits []domain.SemanticHit,
	snap *corpusSnapshot,
	filter func(domain.Document) bool,
	weight float64,
) []domain.RetrievalResult {
	maxLex := 0.0
	for _, r := range lexical {
		if r.Score > maxLex {
			maxLex = r.Score
		}
	}

	blended := make(map[string]domain.RetrievalResult, len(lexical)+len(hits))
	for _, r := range lexical {
		score := 0.0
		if maxLex > 0 {
			score = weight * (r.Score / maxLex)
		}
		r.Score = score
		blended[r.Document.ID] = r
	}

	for _, hit := range hits {
		similarity := hit.Similarity
		if similarity < 0 {
			similarity = 0
		}
		component := (1 - weight) * similarity

		if existing, ok := blended[hit.DocumentID]; ok {
			existing.Score += component
			blended[hit.DocumentID] = existing
			continue
		}
		// A clamped or zero-weighted similarity contributes nothing;
		// zero-score documents never enter the result set.
		if component == 0 {
			continue
		}
		doc, ok := snap.index.Lookup(hit.DocumentID)
		if !ok {
			continue
		}
		if filter != nil && !filter(doc) {
			continue
		}
		blended[hit.DocumentID] = domain.RetrievalResult{Document: doc, Score: component}
	}

	out := make([]domain.RetrievalResult, 0, len(blended))
	for _, r := range blended {
		if r.Score == 0 {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Document.Seq != out[j].Document.Seq {
			return out[i].Document.Seq < out[j].Document.Seq
		}
		return out[i].Document.ID < out[j].Document.ID
	})
	return out
}
