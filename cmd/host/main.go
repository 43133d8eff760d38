// Command host runs the agent host: it discovers tools from the registry,
// wires the configured model, memory, and cache together, and serves the
// interact API.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	host "github.com/itapia/agent-host"
	"github.com/itapia/agent-host/src/cache"
	"github.com/itapia/agent-host/src/config"
	"github.com/itapia/agent-host/src/memory"
	"github.com/itapia/agent-host/src/memory/embed"
	"github.com/itapia/agent-host/src/models"
	"github.com/itapia/agent-host/src/registry"
	"github.com/itapia/agent-host/src/server"
	"github.com/itapia/agent-host/src/spec"
	"github.com/itapia/agent-host/src/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("host: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	model, err := models.NewLLMProvider(ctx, cfg.LLMProvider, cfg.ChatModel, models.ProviderOptions{
		APIKey:  providerAPIKey(cfg),
		BaseURL: providerBaseURL(cfg),
	})
	if err != nil {
		log.Fatalf("host: build model: %v", err)
	}

	embedder, err := embed.NewEmbedder(cfg.EmbeddingProvider, cfg.EmbeddingModel, embed.Options{
		OpenAIKey:     cfg.OpenAIAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("host: build embedder: %v", err)
	}

	store, err := memory.NewHistoryStore(ctx, cfg.MemoryType, memory.StoreOptions{
		RedisURL:      cfg.RedisURL,
		RedisTTL:      cfg.RedisTTL,
		PostgresDSN:   cfg.PostgresDSN,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		log.Fatalf("host: build history store: %v", err)
	}

	resultCache, err := cache.New(ctx, cfg.CacheType, cache.Options{
		RedisURL:  cfg.RedisURL,
		TTL:       cfg.CacheTTL,
		Capacity:  cfg.CacheCapacity,
		Threshold: cfg.CacheThreshold,
		Embedder:  embedder,
	})
	if err != nil {
		log.Fatalf("host: build cache: %v", err)
	}

	schemas, err := spec.LoadSchemaRegistry(cfg.SchemasFile)
	if err != nil {
		log.Fatalf("host: load schemas: %v", err)
	}

	builder := registry.NewBuilder(registry.NewClient(cfg.RegistryURL, nil), schemas, nil)
	discovered, err := builder.Discover(ctx)
	if err != nil {
		log.Fatalf("host: discover tools: %v", err)
	}
	catalog, err := tools.NewCatalog(discovered)
	if err != nil {
		log.Fatalf("host: build catalog: %v", err)
	}
	log.Printf("host: serving %d tools", catalog.Len())

	systemPrompt, err := config.LoadPrompt(cfg.PromptFile, cfg.SystemPromptID)
	if err != nil {
		log.Fatalf("host: load prompt: %v", err)
	}

	var retriever *memory.Retriever
	if embedder != nil {
		retriever = memory.NewRetriever(embedder, cfg.RetrievalTopK)
	}

	dispatcher, err := host.New(host.Options{
		Model:        model,
		Store:        store,
		Retriever:    retriever,
		Cache:        resultCache,
		Catalog:      catalog,
		SystemPrompt: systemPrompt,
	})
	if err != nil {
		log.Fatalf("host: %v", err)
	}

	handler := server.New(dispatcher, cfg.APIBaseRoute)
	log.Printf("host: listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("host: %v", err)
	}
}

func providerAPIKey(cfg *config.Config) string {
	switch cfg.LLMProvider {
	case "google":
		return cfg.GoogleAPIKey
	case "openai":
		return cfg.OpenAIAPIKey
	case "openrouter":
		return cfg.OpenRouterAPIKey
	default:
		return ""
	}
}

func providerBaseURL(cfg *config.Config) string {
	switch cfg.LLMProvider {
	case "openrouter":
		return cfg.OpenRouterBaseURL
	case "ollama":
		return cfg.OllamaBaseURL
	default:
		return ""
	}
}
