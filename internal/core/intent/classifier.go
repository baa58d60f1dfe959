package intent

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/index"
)

//go:embed patterns.yaml
var defaultPatterns []byte

type patternTable struct {
	Intents []struct {
		Intent  string   `yaml:"intent"`
		Phrases []string `yaml:"phrases"`
	} `yaml:"intents"`
	Regions    map[string][]string `yaml:"regions"`
	Categories []string            `yaml:"categories"`
	Frameworks map[string][]string `yaml:"frameworks"`
}

// Classifier derives a query intent plus extracted filters from a raw
// query string by matching against a curated pattern table. It is a
// pure function over the table: classification never fails, unmatched
// queries fall through to the general intent with no filters.
type Classifier struct {
	table       patternTable
	regionCodes []string
}

// New builds a classifier from the embedded default pattern table.
func New() (*Classifier, error) {
	return Parse(defaultPatterns)
}

// NewFromFile loads an operator-edited pattern table.
func NewFromFile(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern table: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Classifier, error) {
	var table patternTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse pattern table: %w", err)
	}
	if len(table.Intents) == 0 {
		return nil, fmt.Errorf("pattern table has no intent rules")
	}

	codes := make([]string, 0, len(table.Regions))
	for code := range table.Regions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return &Classifier{table: table, regionCodes: codes}, nil
}

// Classify inspects the query and returns the first-matching intent in
// table order, plus any region, category, and framework filters found
// anywhere in the query. Filter extraction is independent of intent.
func (c *Classifier) Classify(query string) domain.QueryIntent {
	lower := strings.ToLower(query)
	tokens := tokenSet(lower)

	out := domain.QueryIntent{Kind: domain.IntentGeneral}
	for _, rule := range c.table.Intents {
		if matchesAny(lower, tokens, rule.Phrases) {
			out.Kind = domain.IntentKind(rule.Intent)
			break
		}
	}

	for _, code := range c.regionCodes {
		if matchesAny(lower, tokens, c.table.Regions[code]) {
			out.Region = code
			break
		}
	}

	for _, category := range c.table.Categories {
		if strings.Contains(lower, category) {
			out.Category = category
			break
		}
	}

	for _, framework := range []string{"old", "new"} {
		if matchesAny(lower, tokens, c.table.Frameworks[framework]) {
			out.Framework = framework
			break
		}
	}

	return out
}

// matchesAny treats single-token phrases as whole-token matches and
// longer phrases as substring matches.
func matchesAny(lower string, tokens map[string]struct{}, phrases []string) bool {
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if !strings.ContainsAny(phrase, " $") && len(index.Tokenize(phrase)) == 1 {
			if _, ok := tokens[phrase]; ok {
				return true
			}
			continue
		}
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func tokenSet(s string) map[string]struct{} {
	tokens := index.Tokenize(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}
