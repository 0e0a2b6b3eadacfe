package chromem

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"

	"coursetutor/internal/domain"
)

// Store persists embedding records in an on-disk chromem-go collection.
// The collection survives process restarts, so a populated index can be
// reused without re-ingesting.
type Store struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	name       string
}

// Config locates the persistent database and its collection.
type Config struct {
	Path       string
	Collection string
}

// NewStore opens (or creates) the persistent database and collection.
func NewStore(cfg Config) (*Store, error) {
	db, err := chromemgo.NewPersistentDB(cfg.Path, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db at %s: %w", cfg.Path, err)
	}
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", cfg.Collection, err)
	}
	return &Store{db: db, collection: collection, name: cfg.Collection}, nil
}

// Init validates the embedding dimension. chromem derives the dimension from
// the vectors themselves, so nothing is persisted here.
func (s *Store) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ChunkID
		contents[i] = ch.Text
		metadatas[i] = map[string]string{
			"document_id": ch.DocumentID,
			"source":      ch.Source,
			"index":       strconv.Itoa(ch.Index),
			"start":       strconv.Itoa(ch.Start),
			"end":         strconv.Itoa(ch.End),
		}
	}
	if err := s.collection.Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return fmt.Errorf("add to collection: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	if len(vector) == 0 {
		return nil, errors.New("empty query vector")
	}
	// chromem rejects nResults greater than the stored document count
	if count := s.collection.Count(); topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}
	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		chunk := domain.Chunk{ChunkID: r.ID, Text: r.Content}
		if r.Metadata != nil {
			chunk.DocumentID = r.Metadata["document_id"]
			chunk.Source = r.Metadata["source"]
			chunk.Index, _ = strconv.Atoi(r.Metadata["index"])
			chunk.Start, _ = strconv.Atoi(r.Metadata["start"])
			chunk.End, _ = strconv.Atoi(r.Metadata["end"])
		}
		out = append(out, domain.SearchResult{Chunk: chunk, Score: float64(r.Similarity)})
	}
	return out, nil
}

func (s *Store) Count() int {
	return s.collection.Count()
}

// Clear drops and recreates the collection, implementing the
// clear-and-rebuild re-ingestion policy.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	collection, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	s.collection = collection
	return nil
}
