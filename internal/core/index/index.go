package index

import (
	"sort"
	"strings"
	"unicode"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

type fieldSet uint8

const (
	fieldTitle fieldSet = 1 << iota
	fieldCategory
	fieldContent
)

// Index is an inverted index from normalized token to the documents
// containing it, with the fields each token occurred in. Built once per
// corpus load and read-only afterward; a rebuild produces a fresh Index
// that the owner swaps in atomically.
type Index struct {
	postings map[string]map[string]fieldSet
	docs     []domain.Document
	pos      map[string]int
}

// Build indexes the documents in corpus order. Rebuilding from the same
// document set yields structurally identical postings.
func Build(docs []domain.Document) *Index {
	ix := &Index{
		postings: make(map[string]map[string]fieldSet),
		docs:     docs,
		pos:      make(map[string]int, len(docs)),
	}
	for i, doc := range docs {
		ix.pos[doc.ID] = i
		ix.add(doc.ID, doc.Title, fieldTitle)
		ix.add(doc.ID, doc.Category, fieldCategory)
		ix.add(doc.ID, doc.Content, fieldContent)
	}
	return ix
}

func (ix *Index) add(docID, text string, field fieldSet) {
	for _, token := range Tokenize(text) {
		byDoc, ok := ix.postings[token]
		if !ok {
			byDoc = make(map[string]fieldSet, 4)
			ix.postings[token] = byDoc
		}
		byDoc[docID] |= field
	}
}

// Postings returns the ids of documents containing token, sorted for
// determinism.
func (ix *Index) Postings(token string) []string {
	byDoc, ok := ix.postings[token]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(byDoc))
	for id := range byDoc {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a document by id.
func (ix *Index) Lookup(id string) (domain.Document, bool) {
	i, ok := ix.pos[id]
	if !ok {
		return domain.Document{}, false
	}
	return ix.docs[i], true
}

// Documents returns the indexed documents in corpus order.
func (ix *Index) Documents() []domain.Document {
	return ix.docs
}

// Vocabulary returns every indexed token, sorted. Used for near-miss
// suggestions on empty results.
func (ix *Index) Vocabulary() []string {
	out := make([]string, 0, len(ix.postings))
	for token := range ix.postings {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Tokenize lowercases, splits on non-alphanumeric boundaries, and drops
// tokens shorter than two characters.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, 16)
	var b strings.Builder
	flush := func() {
		if b.Len() >= 2 {
			tokens = append(tokens, b.String())
		}
		b.Reset()
	}
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// UniqueTerms tokenizes a query and deduplicates the terms, preserving
// first-seen order.
func UniqueTerms(query string) []string {
	seen := make(map[string]struct{}, 8)
	out := make([]string, 0, 8)
	for _, term := range Tokenize(query) {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}
