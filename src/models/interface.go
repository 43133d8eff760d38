package models

import "context"

// Agent is a pluggable language model: one prompt in, one completion out.
type Agent interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
