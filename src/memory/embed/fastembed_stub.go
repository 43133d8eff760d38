//go:build !fastembed

package embed

import (
	"context"
	"fmt"
)

// FastEmbedder requires the onnxruntime-backed build. The default build
// exposes the same surface so configuration errors stay uniform.
type FastEmbedder struct{}

func NewFastEmbedder(string) (*FastEmbedder, error) {
	return nil, fmt.Errorf("fastembed support not included; rebuild with -tags fastembed")
}

func (*FastEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("fastembed support not included")
}

func (*FastEmbedder) Close() error { return nil }
