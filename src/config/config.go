// Package config resolves the host's environment-driven configuration once
// at startup. Components receive plain values from here; nothing else in the
// process reads the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ConfigurationError is fatal at startup: the process must not serve traffic
// with a broken configuration.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Msg }

// Config is the fully resolved host configuration.
type Config struct {
	ListenAddr   string
	APIBaseRoute string

	LLMProvider       string // google | openai | openrouter | ollama
	ChatModel         string
	GoogleAPIKey      string
	OpenAIAPIKey      string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OllamaBaseURL     string

	RegistryURL string
	SchemasFile string

	MemoryType    string // in-memory | redis | postgres | mongo
	RedisURL      string
	RedisTTL      time.Duration
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string

	CacheType      string // "" | in-memory | redis | semantic
	CacheTTL       time.Duration
	CacheCapacity  int
	CacheThreshold float64

	EmbeddingProvider string // "" | dummy | openai | ollama | fastembed
	EmbeddingModel    string
	RetrievalTopK     int

	PromptFile     string
	SystemPromptID string
}

var llmProviders = map[string]bool{"google": true, "openai": true, "openrouter": true, "ollama": true}
var memoryTypes = map[string]bool{"in-memory": true, "redis": true, "postgres": true, "mongo": true}
var cacheTypes = map[string]bool{"": true, "in-memory": true, "redis": true, "semantic": true}

// Load reads .env (when present) and the process environment, applies
// defaults, and validates the result. Validation failures are
// ConfigurationErrors and must abort startup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:   getenv("LISTEN_ADDR", ":8000"),
		APIBaseRoute: getenv("API_V1_BASE_ROUTE", "/api/v1"),

		LLMProvider:       strings.ToLower(getenv("LLM_PROVIDER", "google")),
		ChatModel:         os.Getenv("CHAT_MODEL"),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getenv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OllamaBaseURL:     getenv("OLLAMA_BASE_URL", "http://localhost:11434"),

		RegistryURL: os.Getenv("MCP_SERVERS_REGISTRY_URL"),
		SchemasFile: getenv("SCHEMAS_FILE", "spec/schemas.yaml"),

		MemoryType:    strings.ToLower(getenv("MEMORY_TYPE", "in-memory")),
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379/0"),
		RedisTTL:      secondsEnv("REDIS_TTL", 3600),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getenv("MONGO_DATABASE", "agent_host"),

		CacheType:      strings.ToLower(os.Getenv("CACHE_TYPE")),
		CacheTTL:       secondsEnv("CACHE_TTL", 3600),
		CacheCapacity:  intEnv("CACHE_CAPACITY", 512),
		CacheThreshold: floatEnv("CACHE_SIMILARITY_THRESHOLD", 0),

		EmbeddingProvider: strings.ToLower(os.Getenv("EMBEDDING_PROVIDER")),
		EmbeddingModel:    os.Getenv("EMBEDDING_MODEL"),
		RetrievalTopK:     intEnv("RETRIEVAL_TOP_K", 4),

		PromptFile:     getenv("PROMPT_FILE", "prompts.yaml"),
		SystemPromptID: getenv("SYSTEM_PROMPT_ID", "financial_agent_system_prompt_v1"),
	}

	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel(cfg.LLMProvider)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if !llmProviders[c.LLMProvider] {
		return &ConfigurationError{Msg: fmt.Sprintf("unsupported LLM provider %q", c.LLMProvider)}
	}
	switch c.LLMProvider {
	case "google":
		if c.GoogleAPIKey == "" {
			return &ConfigurationError{Msg: "GOOGLE_API_KEY is required for the google provider"}
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return &ConfigurationError{Msg: "OPENAI_API_KEY is required for the openai provider"}
		}
	case "openrouter":
		if c.OpenRouterAPIKey == "" {
			return &ConfigurationError{Msg: "OPENROUTER_API_KEY is required for the openrouter provider"}
		}
	}
	if !memoryTypes[c.MemoryType] {
		return &ConfigurationError{Msg: fmt.Sprintf("unsupported memory type %q", c.MemoryType)}
	}
	if c.MemoryType == "postgres" && c.PostgresDSN == "" {
		return &ConfigurationError{Msg: "POSTGRES_DSN is required for the postgres memory backend"}
	}
	if c.MemoryType == "mongo" && c.MongoURI == "" {
		return &ConfigurationError{Msg: "MONGO_URI is required for the mongo memory backend"}
	}
	if !cacheTypes[c.CacheType] {
		return &ConfigurationError{Msg: fmt.Sprintf("unsupported cache type %q", c.CacheType)}
	}
	if c.CacheType == "semantic" && c.EmbeddingProvider == "" {
		return &ConfigurationError{Msg: "semantic cache requires an embedding provider"}
	}
	if c.RegistryURL == "" {
		return &ConfigurationError{Msg: "MCP_SERVERS_REGISTRY_URL is required"}
	}
	return nil
}

func defaultChatModel(provider string) string {
	switch provider {
	case "google":
		return "gemini-2.5-flash"
	case "openai":
		return "gpt-4o-mini"
	default:
		return ""
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func floatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func secondsEnv(key string, fallbackSeconds int) time.Duration {
	return time.Duration(intEnv(key, fallbackSeconds)) * time.Second
}
