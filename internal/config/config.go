package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds connection settings for an OpenAI-compatible endpoint.
// The defaults point at a local Ollama server.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string        `yaml:"type"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
// Sizes are in runes of the cleaned document text. ChunkOverlap is a
// pointer so an explicit 0 is distinguishable from an absent key.
type ChunkerConfig struct {
	ChunkSize    int  `yaml:"chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap"`
}

// ChromemConfig contains settings for the persistent on-disk vector store.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// StoreConfig selects and configures the vector store implementation.
type StoreConfig struct {
	Type    string         `yaml:"type"`
	Chromem *ChromemConfig `yaml:"chromem,omitempty"`
}

// GeneratorConfig configures the answer generation model. Temperature is a
// pointer so an explicit 0 is distinguishable from an absent key.
type GeneratorConfig struct {
	OpenAI      *OpenAIConfig `yaml:"openai,omitempty"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature *float32      `yaml:"temperature"`
}

// RetrievalConfig bounds how many chunks are retrieved per question.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// SummaryConfig configures the ingest report summary.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	MaterialsDir string          `yaml:"materials_dir"`
	Embedder     EmbedderConfig  `yaml:"embedder"`
	Chunker      ChunkerConfig   `yaml:"chunker"`
	Store        StoreConfig     `yaml:"store"`
	Generator    GeneratorConfig `yaml:"generator"`
	Retrieval    RetrievalConfig `yaml:"retrieval"`
	Summary      SummaryConfig   `yaml:"summary"`
}

// MinTopK and MaxTopK bound the per-question retrieval count.
const (
	MinTopK = 1
	MaxTopK = 10
)

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/coursetutor/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "coursetutor", "config.yaml"), nil
}

// Default returns the documented default configuration.
func Default() *AppConfig {
	return &AppConfig{
		MaterialsDir: filepath.Join("data", "course_materials"),
		Embedder: EmbedderConfig{
			Type: "openai",
			OpenAI: &OpenAIConfig{
				BaseURL:     "http://localhost:11434/v1",
				APIKeyEnv:   "OPENAI_API_KEY",
				Model:       "nomic-embed-text",
				TimeoutSecs: 60,
			},
		},
		Chunker: ChunkerConfig{ChunkSize: 1200, ChunkOverlap: intPtr(200)},
		Store: StoreConfig{
			Type: "chromem",
			Chromem: &ChromemConfig{
				Path:       filepath.Join("data", "index"),
				Collection: "course_materials",
			},
		},
		Generator: GeneratorConfig{
			OpenAI: &OpenAIConfig{
				BaseURL:     "http://localhost:11434/v1",
				APIKeyEnv:   "OPENAI_API_KEY",
				Model:       "mistral",
				TimeoutSecs: 120,
			},
			MaxTokens:   512,
			Temperature: float32Ptr(0.1),
		},
		Retrieval: RetrievalConfig{TopK: 5},
		Summary:   SummaryConfig{MaxSentences: 5},
	}
}

func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.MaterialsDir == "" {
		cfg.MaterialsDir = def.MaterialsDir
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = def.Embedder.OpenAI
		}
		applyOpenAIDefaults(cfg.Embedder.OpenAI, def.Embedder.OpenAI)
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Chunker.ChunkOverlap == nil {
		cfg.Chunker.ChunkOverlap = def.Chunker.ChunkOverlap
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "chromem"
	}
	if cfg.Store.Type == "chromem" {
		if cfg.Store.Chromem == nil {
			cfg.Store.Chromem = def.Store.Chromem
		}
		if cfg.Store.Chromem.Path == "" {
			cfg.Store.Chromem.Path = def.Store.Chromem.Path
		}
		if cfg.Store.Chromem.Collection == "" {
			cfg.Store.Chromem.Collection = def.Store.Chromem.Collection
		}
	}
	if cfg.Generator.OpenAI == nil {
		cfg.Generator.OpenAI = def.Generator.OpenAI
	}
	applyOpenAIDefaults(cfg.Generator.OpenAI, def.Generator.OpenAI)
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = def.Generator.MaxTokens
	}
	if cfg.Generator.Temperature == nil {
		cfg.Generator.Temperature = def.Generator.Temperature
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Summary.MaxSentences == 0 {
		cfg.Summary.MaxSentences = def.Summary.MaxSentences
	}
}

func applyOpenAIDefaults(c, def *OpenAIConfig) {
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = def.APIKeyEnv
	}
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = def.TimeoutSecs
	}
}

func intPtr(v int) *int { return &v }

func float32Ptr(v float32) *float32 { return &v }

func validate(cfg *AppConfig) error {
	if cfg.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("chunker: chunk_size must be positive, got %d", cfg.Chunker.ChunkSize)
	}
	if o := *cfg.Chunker.ChunkOverlap; o < 0 || o >= cfg.Chunker.ChunkSize {
		return fmt.Errorf("chunker: chunk_overlap must be in [0, chunk_size), got %d", o)
	}
	if cfg.Retrieval.TopK < MinTopK || cfg.Retrieval.TopK > MaxTopK {
		return fmt.Errorf("retrieval: top_k must be in [%d, %d], got %d", MinTopK, MaxTopK, cfg.Retrieval.TopK)
	}
	switch cfg.Embedder.Type {
	case "openai", "tfidf":
	default:
		return fmt.Errorf("embedder: unknown type %q", cfg.Embedder.Type)
	}
	switch cfg.Store.Type {
	case "chromem", "memory":
	default:
		return fmt.Errorf("store: unknown type %q", cfg.Store.Type)
	}
	return nil
}
