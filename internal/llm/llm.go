// Package llm wraps the generative model behind a small interface.
package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers without any text candidate.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// Request is a single structured-output generation call.
type Request struct {
	System           string
	Prompt           string
	Schema           *genai.Schema
	ResponseMIMEType string
	Temperature      float32
}

// Generator produces the raw text output of one model call.
// Implementations may fail on transport errors; callers decide whether to retry.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
