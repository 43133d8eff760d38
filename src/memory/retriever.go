package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/itapia/agent-host/src/concurrent"
	"github.com/itapia/agent-host/src/memory/embed"
)

// DefaultTopK bounds how many past exchanges feed the prompt.
const DefaultTopK = 4

// Retriever selects the past conversation exchanges most relevant to the
// current query by embedding similarity. It builds a throwaway index per
// query; history windows are small enough that a persistent vector index
// would be overkill.
type Retriever struct {
	embedder embed.Embedder
	topK     int
	pool     *concurrent.WorkerPool
}

// NewRetriever creates a retriever. topK <= 0 uses DefaultTopK. All queries
// share one worker pool, so concurrent sessions contend for the same
// embedding slots instead of multiplying them.
func NewRetriever(embedder embed.Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, topK: topK, pool: concurrent.NewWorkerPool(4)}
}

// exchange is one (user, assistant) pair rendered as a retrieval document.
type exchange struct {
	doc   string
	score float64
}

// Retrieve returns the rendered context snippets for the topK most relevant
// exchanges. Fewer than one complete (user, assistant) pair yields nothing.
// Embedding failures degrade to empty context with a warning rather than
// failing the turn.
func (r *Retriever) Retrieve(ctx context.Context, query string, history []Turn) []string {
	if r == nil || r.embedder == nil {
		return nil
	}
	docs := pairExchanges(history)
	if len(docs) == 0 {
		return nil
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("memory: embedding query failed, skipping retrieval: %v", err)
		return nil
	}

	// Embedding is CPU-bound for local providers; keep it on a bounded pool
	// so one session's retrieval cannot monopolize the process.
	vecs, err := concurrent.ParallelMap(ctx, r.pool, docs, func(doc string) ([]float32, error) {
		return r.embedder.Embed(ctx, doc)
	})
	if err != nil {
		log.Printf("memory: embedding history failed, skipping retrieval: %v", err)
		return nil
	}

	scored := make([]exchange, len(docs))
	for i, doc := range docs {
		scored[i] = exchange{doc: doc, score: CosineSimilarity(queryVec, vecs[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	k := r.topK
	if k > len(scored) {
		k = len(scored)
	}
	out := make([]string, 0, k)
	for _, ex := range scored[:k] {
		out = append(out, ex.doc)
	}
	return out
}

// pairExchanges joins consecutive (user, assistant) turns into single
// retrieval documents, keeping question and answer together for context.
func pairExchanges(history []Turn) []string {
	var docs []string
	for i := 0; i+1 < len(history); i++ {
		if history[i].Role != "user" || history[i+1].Role != "assistant" {
			continue
		}
		docs = append(docs, fmt.Sprintf("User asked: %s\nAssistant answered: %s",
			strings.TrimSpace(history[i].Content), strings.TrimSpace(history[i+1].Content)))
		i++
	}
	return docs
}
