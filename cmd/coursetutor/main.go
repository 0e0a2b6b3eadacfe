package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"coursetutor/internal/chunker"
	"coursetutor/internal/config"
	"coursetutor/internal/domain"
	"coursetutor/internal/embedding/openai"
	"coursetutor/internal/embedding/tfidf"
	"coursetutor/internal/generator"
	"coursetutor/internal/loader"
	"coursetutor/internal/service"
	"coursetutor/internal/session"
	"coursetutor/internal/summarizer"
	"coursetutor/internal/tui"
	chromemstore "coursetutor/internal/vectorstore/chromem"
	"coursetutor/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()
	log.DefaultLogger = log.Logger{
		Level:  log.InfoLevel,
		Writer: &log.ConsoleWriter{ColorOutput: true},
	}

	var (
		cfgPath   string
		materials string
		reload    bool
		question  string
		topK      int
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/coursetutor/config.yaml if not provided)")
	flag.StringVar(&materials, "materials", "", "Course materials directory (overrides config)")
	flag.BoolVar(&reload, "reload", false, "Rebuild the knowledge base even if an index already exists")
	flag.StringVar(&question, "question", "", "Ask a single question and exit instead of starting the TUI")
	flag.IntVar(&topK, "k", 0, "Number of chunks to retrieve (1-10; default from config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if materials != "" {
		cfg.MaterialsDir = materials
	}

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("embedder init failed")
		}
		emb = client
	case "tfidf":
		emb = tfidf.NewEmbedder()
	default:
		log.Fatal().Str("type", cfg.Embedder.Type).Msg("unknown embedder")
	}

	ch := chunker.NewWindowChunker(cfg.Chunker.ChunkSize, *cfg.Chunker.ChunkOverlap)

	var st domain.VectorStore
	switch cfg.Store.Type {
	case "chromem":
		store, err := chromemstore.NewStore(chromemstore.Config{
			Path:       cfg.Store.Chromem.Path,
			Collection: cfg.Store.Chromem.Collection,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("vector store init failed")
		}
		st = store
	case "memory":
		st = memory.NewStore()
	default:
		log.Fatal().Str("type", cfg.Store.Type).Msg("unknown vector store")
	}

	gen, err := generator.NewOpenAI(generator.Config{
		BaseURL:     cfg.Generator.OpenAI.BaseURL,
		APIKeyEnv:   cfg.Generator.OpenAI.APIKeyEnv,
		Model:       cfg.Generator.OpenAI.Model,
		Timeout:     time.Duration(cfg.Generator.OpenAI.TimeoutSecs) * time.Second,
		MaxTokens:   cfg.Generator.MaxTokens,
		Temperature: *cfg.Generator.Temperature,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("generator init failed")
	}

	pipeline := service.NewPipeline(
		loader.NewDirectory(cfg.MaterialsDir),
		ch, emb, st, gen,
		summarizer.NewFrequencySummarizer(),
		cfg.Retrieval.TopK,
		cfg.Summary.MaxSentences,
	)

	ctx := context.Background()

	// The TF-IDF vocabulary only exists after an ingest in this process, so a
	// persisted index cannot be reused with it.
	reuse := !reload && pipeline.Indexed() > 0 && cfg.Embedder.Type != "tfidf"
	var summary string
	if reuse {
		summary = fmt.Sprintf("Using existing index (%d chunks). Run with -reload to rebuild.", pipeline.Indexed())
		log.Info().Int("chunks", pipeline.Indexed()).Msg("reusing existing knowledge base")
	} else {
		report, err := pipeline.Ingest(ctx)
		if errors.Is(err, service.ErrEmptyKnowledgeBase) {
			log.Error().Str("dir", cfg.MaterialsDir).Msg("no course materials could be indexed; add .txt, .md, .pdf or .docx files")
			os.Exit(1)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("ingest failed")
		}
		summary = report.Summary
		if summary == "" {
			summary = fmt.Sprintf("Indexed %d chunks from %d documents.", report.Chunks, report.Documents)
		}
	}

	if question != "" {
		answer, err := pipeline.Ask(ctx, session.New(), question, topK)
		if err != nil {
			log.Fatal().Err(err).Msg("question failed")
		}
		fmt.Println(answer.Text)
		if len(answer.Citations) > 0 {
			fmt.Println("\nSources:")
			for i, c := range answer.Citations {
				fmt.Printf("%d. %s #%d (score %.3f)\n", i+1, c.Chunk.Source, c.Chunk.Index, c.Score)
			}
		}
		return
	}

	m := tui.New(pipeline, summary, topK)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal().Err(err).Msg("tui failed")
	}
}
