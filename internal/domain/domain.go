package domain

import "context"

// Document is a single course material file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Format  string
	Content string
}

// Chunk is a bounded contiguous segment of a document used as the indexing unit.
// Start and End are rune offsets into the cleaned document content.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Source     string
	Index      int
	Start      int
	End        int
	Text       string
}

// SearchResult is a matching chunk with its cosine similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Answer is a generated response together with the retrieval results that
// were used as generation context. Citations are exactly that context.
type Answer struct {
	Text      string
	Citations []SearchResult
}

// Embedder converts free text into a numeric vector representation.
// Corpus-derived implementations require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	Count() int
	Clear(ctx context.Context) error
}

// Generator produces a natural-language answer to a question conditioned on
// the retrieved context chunks.
type Generator interface {
	Generate(ctx context.Context, question string, contexts []Chunk) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
