package usecase

import (
	"fmt"
	"strings"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/index"
)

// buildSuggestion produces the refinement hint paired with an empty
// result set: near-miss vocabulary tokens first, then a note about the
// filters that excluded everything, then a generic refinement nudge.
func buildSuggestion(ix *index.Index, terms []string, qi domain.QueryIntent) string {
	if near := nearMissTokens(ix, terms); len(near) > 0 {
		return fmt.Sprintf("did you mean: %s?", strings.Join(near, ", "))
	}

	var filters []string
	if qi.Region != "" {
		filters = append(filters, "region="+qi.Region)
	}
	if qi.Category != "" {
		filters = append(filters, "category="+qi.Category)
	}
	if qi.Framework != "" {
		filters = append(filters, "framework="+qi.Framework)
	}
	if len(filters) > 0 {
		return fmt.Sprintf("no match for filters %s; try removing a filter", strings.Join(filters, ", "))
	}
	return "try a more specific support item, category, or state (e.g. 'in NSW')"
}

// nearMissTokens finds indexed tokens sharing a three-character prefix
// with a query term, skipping exact matches. At most three are
// returned, in vocabulary order for determinism.
func nearMissTokens(ix *index.Index, terms []string) []string {
	const maxSuggestions = 3

	seen := make(map[string]struct{})
	var out []string
	vocabulary := ix.Vocabulary()

	for _, token := range vocabulary {
		for _, term := range terms {
			if len(term) < 3 || token == term {
				continue
			}
			if !strings.HasPrefix(token, term[:3]) && !(len(token) >= 3 && strings.HasPrefix(term, token[:3])) {
				continue
			}
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			out = append(out, token)
			break
		}
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
