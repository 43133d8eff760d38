//go:build fastembed

package embed

import (
	"context"

	fastembed "github.com/anush008/fastembed-go"
)

// FastEmbedder runs a local ONNX embedding model via fastembed. It avoids
// any network dependency for retrieval at the cost of a native onnxruntime.
type FastEmbedder struct {
	flag *fastembed.FlagEmbedding
}

func NewFastEmbedder(cacheDir string) (*FastEmbedder, error) {
	flag, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:    fastembed.BGESmallEN,
		CacheDir: cacheDir,
	})
	if err != nil {
		return nil, err
	}
	return &FastEmbedder{flag: flag}, nil
}

func (e *FastEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.flag.QueryEmbed(text)
}

func (e *FastEmbedder) Close() error {
	e.flag.Destroy()
	return nil
}

var _ Embedder = (*FastEmbedder)(nil)
