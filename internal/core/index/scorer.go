package index

import (
	"sort"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

const (
	titleWeight    = 3.0
	categoryWeight = 2.0
	contentWeight  = 1.0

	kindAlignmentBoost  = 1.5
	completenessBonus   = 1.0
	regionPresenceBonus = 0.5
)

// Score computes the relevance of one document for a term set. Each
// term counts once, at the weight of the best field it appears in.
// The total is multiplied by the alignment boost when the document's
// source kind matches the intent, then region bonuses are added.
// Returns the matched terms alongside the score.
func (ix *Index) Score(terms []string, docID string, intent domain.QueryIntent) (float64, []string) {
	doc, ok := ix.Lookup(docID)
	if !ok {
		return 0, nil
	}

	score := 0.0
	var matched []string
	for _, term := range terms {
		fields, ok := ix.postings[term]
		if !ok {
			continue
		}
		set, ok := fields[docID]
		if !ok {
			continue
		}
		switch {
		case set&fieldTitle != 0:
			score += titleWeight
		case set&fieldCategory != 0:
			score += categoryWeight
		default:
			score += contentWeight
		}
		matched = append(matched, term)
	}
	if score == 0 {
		return 0, nil
	}

	if aligned := intent.AlignedSourceKind(); aligned != "" && doc.SourceKind == aligned {
		score *= kindAlignmentBoost
	}
	if doc.HasAllRegionPrices() {
		score += completenessBonus
	}
	if intent.Region != "" && doc.HasRegionPrice(intent.Region) {
		score += regionPresenceBonus
	}
	return score, matched
}

// Search scores every candidate document for the terms, drops
// zero-score documents, applies the filter, and returns results ranked
// by score with ties broken by ingestion sequence then document id.
// A nil filter admits everything.
func (ix *Index) Search(terms []string, intent domain.QueryIntent, filter func(domain.Document) bool) []domain.RetrievalResult {
	candidates := make(map[string]struct{})
	for _, term := range terms {
		for id := range ix.postings[term] {
			candidates[id] = struct{}{}
		}
	}

	results := make([]domain.RetrievalResult, 0, len(candidates))
	for id := range candidates {
		doc, _ := ix.Lookup(id)
		if filter != nil && !filter(doc) {
			continue
		}
		score, matched := ix.Score(terms, id, intent)
		if score == 0 {
			continue
		}
		sort.Strings(matched)
		results = append(results, domain.RetrievalResult{
			Document:     doc,
			Score:        score,
			MatchedTerms: matched,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Document.Seq != results[j].Document.Seq {
			return results[i].Document.Seq < results[j].Document.Seq
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	return results
}
