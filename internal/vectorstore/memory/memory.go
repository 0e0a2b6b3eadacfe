package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"coursetutor/internal/domain"
)

// Store is an in-memory vector store using brute-force cosine similarity.
// Equal scores keep ingestion order.
type Store struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []domain.Chunk
}

// NewStore creates an empty in-memory store.
func NewStore() *Store { return &Store{} }

func (s *Store) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		return nil, errors.New("topK must be positive")
	}
	if s.dimension > 0 && len(vector) != s.dimension {
		return nil, errors.New("query vector dimension mismatch")
	}
	results := make([]domain.SearchResult, 0, len(s.vectors))
	for i := range s.vectors {
		results = append(results, domain.SearchResult{
			Chunk: s.chunks[i],
			Score: cosine(s.vectors[i], vector),
		})
	}
	// Stable sort keeps ingestion order for equal scores
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

// cosine assumes equal-length vectors; Init and Upsert enforce the dimension.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
