// Package config loads paper-digest settings from defaults, an optional YAML
// file, and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "digest.yaml"

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Index backends.
const (
	BackendMemory = "memory"
	BackendQdrant = "qdrant"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// OpenAIConfig configures the OpenAI-compatible chat and embedding client.
type OpenAIConfig struct {
	APIKeyEnv      string `yaml:"api_key_env"`
	APIKey         string `yaml:"-"`
	BaseURL        string `yaml:"base_url"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
	BatchSize      int    `yaml:"batch_size"`
}

// OllamaConfig configures a local Ollama server.
type OllamaConfig struct {
	Host           string `yaml:"host"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// LLMConfig selects the language model provider.
type LLMConfig struct {
	Provider    string       `yaml:"provider"`
	TimeoutSecs int          `yaml:"timeout_secs"`
	OpenAI      OpenAIConfig `yaml:"openai"`
	Ollama      OllamaConfig `yaml:"ollama"`
}

// QdrantConfig contains connection details for a Qdrant server.
type QdrantConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// IndexConfig selects where chunk embeddings are kept for retrieval.
type IndexConfig struct {
	Backend string       `yaml:"backend"`
	K       int          `yaml:"k"`
	Qdrant  QdrantConfig `yaml:"qdrant"`
}

// ChunkerConfig configures document chunking, in characters.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// SummaryConfig tunes the structured summary generator.
type SummaryConfig struct {
	MinWords    int `yaml:"min_words"`
	FullTextCap int `yaml:"full_text_cap"`
	ContextCap  int `yaml:"context_cap"`
}

// PathsConfig locates files read and written by the pipeline.
type PathsConfig struct {
	SummaryStore string `yaml:"summary_store"`
	MetadataDir  string `yaml:"metadata_dir"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Port string `yaml:"port"`
	HTTP bool   `yaml:"http"`
}

// Config is the root configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Index   IndexConfig   `yaml:"index"`
	Chunker ChunkerConfig `yaml:"chunker"`
	Summary SummaryConfig `yaml:"summary"`
	Paths   PathsConfig   `yaml:"paths"`
	Server  ServerConfig  `yaml:"server"`
	Workers int           `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			TimeoutSecs: 120,
			OpenAI: OpenAIConfig{
				APIKeyEnv:      "OPENAI_API_KEY",
				ChatModel:      "gpt-4o-mini",
				EmbeddingModel: "text-embedding-3-small",
				BatchSize:      64,
			},
			Ollama: OllamaConfig{
				Host:           "http://localhost:11434",
				Model:          "llama3.1",
				EmbeddingModel: "nomic-embed-text",
			},
		},
		Index: IndexConfig{
			Backend: BackendMemory,
			K:       5,
			Qdrant:  QdrantConfig{Host: "localhost", Port: 6334},
		},
		Chunker: ChunkerConfig{Size: 10000, Overlap: 1000},
		Summary: SummaryConfig{MinWords: 100, FullTextCap: 50000, ContextCap: 20000},
		Paths:   PathsConfig{SummaryStore: "document_summaries.json"},
		Server:  ServerConfig{Port: "8080"},
		Workers: 1,
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	ApplyEnv(cfg, os.Getenv)
	applyDefaults(cfg)
	return cfg, nil
}

// ApplyEnv overrides cfg with environment variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	env := lookup(getenv)

	cfg.LLM.Provider = env.getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.TimeoutSecs = env.getEnvInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSecs)

	cfg.LLM.OpenAI.BaseURL = env.getEnv("OPENAI_BASE_URL", cfg.LLM.OpenAI.BaseURL)
	cfg.LLM.OpenAI.ChatModel = env.getEnv("OPENAI_CHAT_MODEL", cfg.LLM.OpenAI.ChatModel)
	cfg.LLM.OpenAI.EmbeddingModel = env.getEnv("OPENAI_EMBEDDING_MODEL", cfg.LLM.OpenAI.EmbeddingModel)
	keyEnv := cfg.LLM.OpenAI.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	cfg.LLM.OpenAI.APIKey = env.getEnv(keyEnv, cfg.LLM.OpenAI.APIKey)

	cfg.LLM.Ollama.Host = env.getEnv("OLLAMA_HOST", cfg.LLM.Ollama.Host)
	cfg.LLM.Ollama.Model = env.getEnv("OLLAMA_MODEL", cfg.LLM.Ollama.Model)
	cfg.LLM.Ollama.EmbeddingModel = env.getEnv("OLLAMA_EMBEDDING_MODEL", cfg.LLM.Ollama.EmbeddingModel)

	cfg.Index.Backend = env.getEnv("INDEX_BACKEND", cfg.Index.Backend)
	cfg.Index.Qdrant.Host = env.getEnv("QDRANT_HOST", cfg.Index.Qdrant.Host)
	cfg.Index.Qdrant.Port = env.getEnvInt("QDRANT_PORT", cfg.Index.Qdrant.Port)

	cfg.Workers = env.getEnvInt("DIGEST_WORKERS", cfg.Workers)
	cfg.Paths.MetadataDir = env.getEnv("METADATA_DIR", cfg.Paths.MetadataDir)
	cfg.Paths.SummaryStore = env.getEnv("SUMMARY_STORE", cfg.Paths.SummaryStore)

	cfg.Server.Port = env.getEnv("PORT", cfg.Server.Port)
	if v := getenv("SERVER_MODE"); v != "" {
		cfg.Server.HTTP = v == "true"
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: %s is required for the openai provider", ErrInvalid, c.LLM.OpenAI.APIKeyEnv)
		}
	case ProviderOllama:
		if c.LLM.Ollama.Host == "" {
			return fmt.Errorf("%w: ollama host is empty", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalid, c.LLM.Provider)
	}

	switch c.Index.Backend {
	case BackendMemory, BackendQdrant:
	default:
		return fmt.Errorf("%w: unknown index backend %q", ErrInvalid, c.Index.Backend)
	}

	if c.Chunker.Overlap >= c.Chunker.Size {
		return fmt.Errorf("%w: chunk overlap %d must be less than size %d", ErrInvalid, c.Chunker.Overlap, c.Chunker.Size)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Index.Backend = strings.ToLower(strings.TrimSpace(cfg.Index.Backend))

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = def.LLM.Provider
	}
	if cfg.LLM.TimeoutSecs <= 0 {
		cfg.LLM.TimeoutSecs = def.LLM.TimeoutSecs
	}
	if cfg.LLM.OpenAI.APIKeyEnv == "" {
		cfg.LLM.OpenAI.APIKeyEnv = def.LLM.OpenAI.APIKeyEnv
	}
	if cfg.LLM.OpenAI.BatchSize <= 0 {
		cfg.LLM.OpenAI.BatchSize = def.LLM.OpenAI.BatchSize
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = def.Index.Backend
	}
	if cfg.Index.K <= 0 {
		cfg.Index.K = def.Index.K
	}
	if cfg.Chunker.Size <= 0 {
		cfg.Chunker.Size = def.Chunker.Size
	}
	if cfg.Chunker.Overlap < 0 {
		cfg.Chunker.Overlap = def.Chunker.Overlap
	}
	if cfg.Summary.FullTextCap <= 0 {
		cfg.Summary.FullTextCap = def.Summary.FullTextCap
	}
	if cfg.Summary.ContextCap <= 0 {
		cfg.Summary.ContextCap = def.Summary.ContextCap
	}
	if cfg.Summary.MinWords < 0 {
		cfg.Summary.MinWords = def.Summary.MinWords
	}
	if cfg.Paths.SummaryStore == "" {
		cfg.Paths.SummaryStore = def.Paths.SummaryStore
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
}

type lookup func(string) string

func (l lookup) getEnv(key, defaultValue string) string {
	if v := l(key); v != "" {
		return v
	}
	return defaultValue
}

func (l lookup) getEnvInt(key string, defaultValue int) int {
	if v := l(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
