package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"

	"coursetutor/internal/config"
	"coursetutor/internal/domain"
	"coursetutor/internal/loader"
	"coursetutor/internal/session"
)

// ErrEmptyKnowledgeBase signals that no chunks are indexed, either because
// ingestion found nothing or because the store has not been populated yet.
var ErrEmptyKnowledgeBase = errors.New("knowledge base is empty")

// InsufficientInformationAnswer is returned when retrieval produces no
// context to ground an answer on.
const InsufficientInformationAnswer = "I don't have enough information in the course materials to answer that question."

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Documents int
	Skipped   []loader.SkippedFile
	Chunks    int
	Summary   string
}

// Pipeline orchestrates the two flows of the system: ingestion
// (load -> chunk -> embed -> index) and question answering
// (retrieve -> generate -> cite).
type Pipeline struct {
	loader     *loader.Directory
	chunker    domain.Chunker
	embedder   domain.Embedder
	store      domain.VectorStore
	generator  domain.Generator
	summarizer domain.Summarizer

	defaultTopK     int
	summarySentence int
}

// NewPipeline wires the pipeline components together.
func NewPipeline(ld *loader.Directory, ch domain.Chunker, emb domain.Embedder, st domain.VectorStore, gen domain.Generator, sum domain.Summarizer, defaultTopK, summarySentences int) *Pipeline {
	if defaultTopK < config.MinTopK || defaultTopK > config.MaxTopK {
		defaultTopK = 5
	}
	return &Pipeline{
		loader:          ld,
		chunker:         ch,
		embedder:        emb,
		store:           st,
		generator:       gen,
		summarizer:      sum,
		defaultTopK:     defaultTopK,
		summarySentence: summarySentences,
	}
}

// Ingest rebuilds the knowledge base from the materials directory. The index
// is cleared first, so re-ingesting an unchanged directory never grows it.
// Documents whose chunks fail to embed are skipped with a warning; the run
// only succeeds if at least one chunk was indexed.
func (p *Pipeline) Ingest(ctx context.Context) (*IngestReport, error) {
	documents, loadReport, err := p.loader.Load()
	if err != nil {
		return nil, err
	}
	report := &IngestReport{Documents: len(documents), Skipped: loadReport.Skipped}
	if len(documents) == 0 {
		return report, ErrEmptyKnowledgeBase
	}

	type docChunks struct {
		doc    domain.Document
		chunks []domain.Chunk
	}
	var all []docChunks
	var corpus []string
	for _, d := range documents {
		chunks, err := p.chunker.Chunk(d)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		all = append(all, docChunks{doc: d, chunks: chunks})
		for _, ch := range chunks {
			corpus = append(corpus, ch.Text)
		}
	}
	if len(corpus) == 0 {
		return report, ErrEmptyKnowledgeBase
	}
	if err := p.embedder.Prepare(ctx, corpus); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}

	var indexed []domain.Chunk
	var vectors [][]float32
	for _, dc := range all {
		ok := true
		docVectors := make([][]float32, 0, len(dc.chunks))
		for _, ch := range dc.chunks {
			vec, err := p.embedder.Embed(ctx, ch.Text)
			if err != nil {
				log.Warn().Str("file", dc.doc.Path).Err(err).Msg("embedding failed, skipping document")
				report.Skipped = append(report.Skipped, loader.SkippedFile{Path: dc.doc.Path, Reason: "embedding failed: " + err.Error()})
				ok = false
				break
			}
			docVectors = append(docVectors, vec)
		}
		if ok {
			indexed = append(indexed, dc.chunks...)
			vectors = append(vectors, docVectors...)
		}
	}
	if len(indexed) == 0 {
		return report, ErrEmptyKnowledgeBase
	}

	if err := p.store.Init(ctx, len(vectors[0])); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := p.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear store: %w", err)
	}
	if err := p.store.Upsert(ctx, indexed, vectors); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}
	report.Chunks = len(indexed)
	log.Info().Int("documents", report.Documents).Int("chunks", report.Chunks).Int("skipped", len(report.Skipped)).Msg("knowledge base built")

	if p.summarizer != nil {
		summary, err := p.summarizer.Summarize(joinContents(documents), p.summarySentence)
		if err != nil {
			log.Warn().Err(err).Msg("summary failed")
		} else {
			report.Summary = summary
		}
	}
	return report, nil
}

// Retrieve embeds the question and returns the top-K most similar chunks,
// scores descending. K is clamped to the configured bounds.
func (p *Pipeline) Retrieve(ctx context.Context, question string, k int) ([]domain.SearchResult, error) {
	if p.store.Count() == 0 {
		return nil, ErrEmptyKnowledgeBase
	}
	k = p.clampK(k)
	vec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	results, err := p.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}

// Ask answers a question using retrieved course material as context and
// records the exchange in the session. When nothing relevant is retrieved it
// short-circuits to a fixed insufficient-information answer without calling
// the generator.
func (p *Pipeline) Ask(ctx context.Context, sess *session.Session, question string, k int) (domain.Answer, error) {
	results, err := p.Retrieve(ctx, question, k)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(results) == 0 {
		answer := domain.Answer{Text: InsufficientInformationAnswer}
		if sess != nil {
			sess.Record(question, answer)
		}
		return answer, nil
	}
	contexts := make([]domain.Chunk, len(results))
	for i, r := range results {
		contexts[i] = r.Chunk
	}
	text, err := p.generator.Generate(ctx, question, contexts)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	answer := domain.Answer{Text: text, Citations: results}
	if sess != nil {
		sess.Record(question, answer)
	}
	return answer, nil
}

// Indexed reports how many chunks the store currently holds.
func (p *Pipeline) Indexed() int { return p.store.Count() }

func (p *Pipeline) clampK(k int) int {
	if k <= 0 {
		return p.defaultTopK
	}
	if k < config.MinTopK {
		return config.MinTopK
	}
	if k > config.MaxTopK {
		return config.MaxTopK
	}
	return k
}

func joinContents(documents []domain.Document) string {
	var b []byte
	for _, d := range documents {
		b = append(b, d.Content...)
		b = append(b, '\n')
	}
	return string(b)
}
