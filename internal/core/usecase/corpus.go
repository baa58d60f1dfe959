package usecase

import (
	"sync/atomic"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/index"
	"github.com/papl-tools/papl-assistant/internal/core/semantic"
)

type corpusSnapshot struct {
	docs  []domain.Document
	index *index.Index
	store *semantic.Store
}

// Corpus is the explicit handle to the loaded document set. Queries
// read whichever snapshot is current; a rebuild constructs a complete
// new snapshot and swaps the pointer, so no query ever observes a
// partially built index.
type Corpus struct {
	current atomic.Pointer[corpusSnapshot]
}

func NewCorpus() *Corpus {
	return &Corpus{}
}

func (c *Corpus) swap(s *corpusSnapshot) {
	c.current.Store(s)
}

func (c *Corpus) snapshot() *corpusSnapshot {
	return c.current.Load()
}

// Lookup resolves a document in the current snapshot.
func (c *Corpus) Lookup(id string) (domain.Document, bool) {
	snap := c.snapshot()
	if snap == nil {
		return domain.Document{}, false
	}
	return snap.index.Lookup(id)
}

// Loaded reports whether an ingestion pass has completed.
func (c *Corpus) Loaded() bool {
	return c.snapshot() != nil
}
