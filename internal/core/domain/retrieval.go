package domain

type IntentKind string

const (
	IntentPricing    IntentKind = "pricing"
	IntentClaiming   IntentKind = "claiming"
	IntentDefinition IntentKind = "definition"
	IntentGeneral    IntentKind = "general"
)

// QueryIntent is derived per query and never persisted. Filter fields
// are empty when the query did not mention them.
type QueryIntent struct {
	Kind      IntentKind `json:"kind"`
	Region    string     `json:"region,omitempty"`
	Category  string     `json:"category,omitempty"`
	Framework string     `json:"framework,omitempty"`
}

// AlignedSourceKind returns the source kind this intent boosts, or ""
// for general queries.
func (qi QueryIntent) AlignedSourceKind() SourceKind {
	switch qi.Kind {
	case IntentPricing:
		return SourcePricing
	case IntentClaiming:
		return SourceRule
	case IntentDefinition:
		return SourceGuidance
	default:
		return ""
	}
}

type RetrievalMode string

const (
	ModeLexical RetrievalMode = "lexical"
	ModeHybrid  RetrievalMode = "hybrid"
)

// SearchOptions control one retrieval round-trip. Explicit filter
// values override whatever the classifier extracts from the query.
type SearchOptions struct {
	Semantic    bool
	MaxResults  int
	BlendWeight float64
	Region      string
	Category    string
	Framework   string
}

type RetrievalResult struct {
	Document     Document `json:"document"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// SearchOutcome is what one query round-trip returns. An empty result
// set is a normal outcome and carries a suggestion when one exists.
type SearchOutcome struct {
	Intent     QueryIntent       `json:"intent"`
	Mode       RetrievalMode     `json:"mode"`
	Results    []RetrievalResult `json:"results"`
	Suggestion string            `json:"suggestion,omitempty"`
}

// SemanticHit is one nearest neighbour from the embedding store.
type SemanticHit struct {
	DocumentID string
	Seq        int
	Similarity float64
}
