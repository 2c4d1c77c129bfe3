package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Docs []string `env:"DOCS" envSeparator:","`

	ChunkSize       int    `env:"CHUNK_SIZE" envDefault:"300"`
	ChunkOverlap    int    `env:"CHUNK_OVERLAP" envDefault:"0"`
	ChunkLengthUnit string `env:"CHUNK_LENGTH_UNIT" envDefault:"chars"`
	TokenEncoding   string `env:"TOKEN_ENCODING" envDefault:"cl100k_base"`

	Embedder         string `env:"EMBEDDER" envDefault:"hashing"`
	HashingDim       int    `env:"HASHING_DIM" envDefault:"1024"`
	OllamaURL        string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaEmbedModel string `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`
	OllamaPull       bool   `env:"OLLAMA_PULL" envDefault:"false"`
	OpenAIKey        string `env:"OPENAI_API_KEY"`
	OpenAIEmbedModel string `env:"OPENAI_EMBED_MODEL" envDefault:"text-embedding-3-small"`
	EmbedConcurrency int    `env:"EMBED_CONCURRENCY" envDefault:"4"`
	EmbedCacheSize   int    `env:"EMBED_CACHE_SIZE" envDefault:"0"`

	TopK int `env:"TOP_K" envDefault:"3"`

	LlmMain        LLM     `envPrefix:"LLM_"`
	MaxTokens      int     `env:"LLM_MAX_TOKENS" envDefault:"512"`
	Temperature    float32 `env:"LLM_TEMPERATURE" envDefault:"0.2"`
	LlmRetries     uint64  `env:"LLM_RETRIES" envDefault:"3"`
	MaxPromptChars int     `env:"MAX_PROMPT_CHARS" envDefault:"6000"`

	DBFile     string `env:"DB_FILE" envDefault:"./data/isp_database.db"`
	DBSeed     bool   `env:"DB_SEED" envDefault:"false"`
	SQLTrigger string `env:"SQL_TRIGGER" envDefault:"user id"`

	ActivityLog string `env:"ACTIVITY_LOG" envDefault:"./logs/chatbot_activity.log"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON     bool   `env:"LOG_JSON" envDefault:"false"`
}

// LLM points at an OpenAI-compatible chat completion endpoint.
type LLM struct {
	URL   string `env:"URL" envDefault:"http://localhost:11434/v1"`
	Model string `env:"MODEL" envDefault:"gemma2:2b"`
	Key   string `env:"KEY"`
}

func Init(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap))
	}
	switch c.ChunkLengthUnit {
	case "chars", "tokens":
	default:
		errs = append(errs, fmt.Errorf("CHUNK_LENGTH_UNIT must be chars or tokens, got %q", c.ChunkLengthUnit))
	}
	switch c.Embedder {
	case "hashing":
		if c.HashingDim <= 0 {
			errs = append(errs, fmt.Errorf("HASHING_DIM must be positive, got %d", c.HashingDim))
		}
	case "ollama":
	case "openai":
		if c.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai embedder"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMBEDDER %q", c.Embedder))
	}
	if c.EmbedConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("EMBED_CONCURRENCY must be positive, got %d", c.EmbedConcurrency))
	}
	if c.TopK <= 0 {
		errs = append(errs, fmt.Errorf("TOP_K must be positive, got %d", c.TopK))
	}
	if strings.TrimSpace(c.SQLTrigger) == "" {
		errs = append(errs, errors.New("SQL_TRIGGER must not be empty"))
	}
	return errors.Join(errs...)
}
