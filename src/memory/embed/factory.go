package embed

import "fmt"

// Options carries the credentials and endpoints embedder constructors need.
type Options struct {
	OpenAIKey     string
	OllamaBaseURL string
	CacheDir      string
}

// NewEmbedder builds the configured embedding provider. kind "" disables
// semantic retrieval entirely and returns nil.
func NewEmbedder(kind, model string, opts Options) (Embedder, error) {
	switch kind {
	case "":
		return nil, nil
	case "dummy":
		return DummyEmbedder{}, nil
	case "openai":
		return NewOpenAIEmbedder(opts.OpenAIKey, model)
	case "ollama":
		return NewOllamaEmbedder(opts.OllamaBaseURL, model)
	case "fastembed":
		return NewFastEmbedder(opts.CacheDir)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", kind)
	}
}
