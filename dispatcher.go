// Package host dispatches user messages through memory retrieval, the result
// cache, and the tool-calling loop, and persists the outcome.
package host

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/itapia/agent-host/src/cache"
	"github.com/itapia/agent-host/src/memory"
	"github.com/itapia/agent-host/src/models"
	"github.com/itapia/agent-host/src/tools"
)

const defaultSystemPrompt = "You are a helpful financial analysis assistant. Answer precisely, " +
	"and call the available tools whenever live market or profile data is needed."

// DefaultMaxToolIterations bounds the tool-calling loop per turn.
const DefaultMaxToolIterations = 5

// Dispatcher orchestrates one conversational turn: load history, retrieve
// relevant context, consult the cache, run the tool loop on a miss, persist.
type Dispatcher struct {
	model        models.Agent
	store        memory.HistoryStore
	retriever    *memory.Retriever
	cache        cache.Cache
	catalog      *tools.Catalog
	systemPrompt string
	maxIters     int
}

// Options configure a new Dispatcher.
type Options struct {
	Model        models.Agent
	Store        memory.HistoryStore
	Retriever    *memory.Retriever // nil disables context retrieval
	Cache        cache.Cache       // nil disables caching
	Catalog      *tools.Catalog    // nil means no tools; the model answers free-text
	SystemPrompt string
	MaxIters     int
}

// New creates a Dispatcher with the provided options.
func New(opts Options) (*Dispatcher, error) {
	if opts.Model == nil {
		return nil, errors.New("dispatcher requires a language model")
	}
	if opts.Store == nil {
		return nil, errors.New("dispatcher requires a history store")
	}

	systemPrompt := opts.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	maxIters := opts.MaxIters
	if maxIters <= 0 {
		maxIters = DefaultMaxToolIterations
	}
	catalog := opts.Catalog
	if catalog == nil {
		empty, err := tools.NewCatalog(nil)
		if err != nil {
			return nil, err
		}
		catalog = empty
	}

	return &Dispatcher{
		model:        opts.Model,
		store:        opts.Store,
		retriever:    opts.Retriever,
		cache:        opts.Cache,
		catalog:      catalog,
		systemPrompt: systemPrompt,
		maxIters:     maxIters,
	}, nil
}

// Dispatch processes one user message for a session and returns the
// assistant's answer. A cache hit short-circuits before any model or tool
// call and leaves history untouched. On a miss, the answer is cached and the
// (user, assistant) pair is appended to history only after the turn fully
// succeeds. An unreachable memory or cache backend aborts the turn with a
// BackendUnavailableError; a nil cache simply disables caching.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, userMessage string) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", errors.New("user message is empty")
	}

	history, err := d.store.History(ctx, sessionID)
	if err != nil {
		return "", &BackendUnavailableError{Backend: "memory", Err: err}
	}
	log.Printf("dispatcher: session %s has %d stored turns", sessionID, len(history))

	var contextDocs []string
	if d.retriever != nil {
		contextDocs = d.retriever.Retrieve(ctx, userMessage, history)
	}

	key := cacheKeyMaterial(contextDocs, userMessage)
	if d.cache != nil {
		value, ok, err := d.cache.Lookup(ctx, key)
		if err != nil {
			return "", &BackendUnavailableError{Backend: "cache", Err: err}
		}
		if ok {
			log.Printf("dispatcher: cache hit for session %s", sessionID)
			return value, nil
		}
	}

	answer, err := d.runLoop(ctx, contextDocs, userMessage)
	if err != nil {
		return "", err
	}

	if d.cache != nil {
		if err := d.cache.Store(ctx, key, answer); err != nil {
			return "", &BackendUnavailableError{Backend: "cache", Err: err}
		}
	}
	turns := []memory.Turn{
		{Role: "user", Content: userMessage},
		{Role: "assistant", Content: answer},
	}
	if err := d.store.Append(ctx, sessionID, turns...); err != nil {
		return "", &BackendUnavailableError{Backend: "memory", Err: err}
	}

	return answer, nil
}

// cacheKeyMaterial derives the cache key from the retrieved context and the
// message only. The session id is deliberately excluded so identical
// questions with identical context hit across sessions.
func cacheKeyMaterial(contextDocs []string, userMessage string) string {
	return fmt.Sprintf("Context:\n%s\n\nUser Question:\n%s",
		strings.Join(contextDocs, "\n"), userMessage)
}
