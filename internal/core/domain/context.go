package domain

import (
	"fmt"
	"strings"
)

// ContextEntry is one document admitted into the generation context.
// Label is stable per assembly ("Document 1", "Document 2", ...) and is
// the citation contract with the generation provider.
type ContextEntry struct {
	Label      string     `json:"label"`
	SourceKind SourceKind `json:"source_kind"`
	DocumentID string     `json:"document_id"`
	Content    string     `json:"content"`
}

// ContextBlock is the budget-constrained context for one generation
// request. Size counts content characters against the caller's budget.
type ContextBlock struct {
	Entries []ContextEntry `json:"entries"`
	Size    int            `json:"size"`
	Budget  int            `json:"budget"`
}

// Render flattens the block into the prompt context text. Citation
// labels here must match what the answer cites.
func (b ContextBlock) Render() string {
	var sb strings.Builder
	for _, entry := range b.Entries {
		fmt.Fprintf(&sb, "[%s - %s]\n%s\n\n", entry.Label, strings.ToUpper(string(entry.SourceKind)), entry.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Answer is the generated reply plus the context it was grounded in.
type Answer struct {
	Text       string       `json:"text"`
	Context    ContextBlock `json:"context"`
	Suggestion string       `json:"suggestion,omitempty"`
}
