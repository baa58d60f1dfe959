package semantic

import (
	"fmt"
	"math"
	"sort"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

type entry struct {
	id   string
	seq  int
	vec  []float32
	norm float64
}

// Store holds precomputed document embeddings for brute-force cosine
// search. It is built once per corpus load and read-only afterward;
// the corpus scale this system targets needs no ANN structure.
type Store struct {
	entries []entry
	missing int
}

// NewStore collects the embeddings present on the documents. Documents
// without an embedding are counted so Search can report incomplete
// coverage instead of silently ranking a partial corpus.
func NewStore(docs []domain.Document) *Store {
	s := &Store{entries: make([]entry, 0, len(docs))}
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			s.missing++
			continue
		}
		s.entries = append(s.entries, entry{
			id:   doc.ID,
			seq:  doc.Seq,
			vec:  doc.Embedding,
			norm: vectorNorm(doc.Embedding),
		})
	}
	return s
}

// Coverage returns how many documents have embeddings and how many are
// still waiting for backfill.
func (s *Store) Coverage() (embedded, missing int) {
	return len(s.entries), s.missing
}

// Search returns the topK most similar documents by cosine similarity,
// ties broken by ingestion sequence then document id. It fails with
// ErrEmbeddingUnavailable while any document still lacks an embedding,
// so lazy corpora serve lexical-only results until backfill completes.
func (s *Store) Search(queryVec []float32, topK int) ([]domain.SemanticHit, error) {
	if s.missing > 0 || len(s.entries) == 0 {
		return nil, domain.WrapError(domain.ErrEmbeddingUnavailable, "semantic search",
			fmt.Errorf("%d of %d documents have no embedding", s.missing, s.missing+len(s.entries)))
	}
	if len(queryVec) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "semantic search", fmt.Errorf("empty query vector"))
	}
	if topK <= 0 {
		topK = 5
	}

	queryNorm := vectorNorm(queryVec)
	hits := make([]domain.SemanticHit, 0, len(s.entries))
	for _, e := range s.entries {
		hits = append(hits, domain.SemanticHit{
			DocumentID: e.id,
			Seq:        e.seq,
			Similarity: cosine(queryVec, queryNorm, e.vec, e.norm),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].Seq != hits[j].Seq {
			return hits[i].Seq < hits[j].Seq
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})

	if topK > len(hits) {
		topK = len(hits)
	}
	return hits[:topK], nil
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dot := 0.0
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}

func vectorNorm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
