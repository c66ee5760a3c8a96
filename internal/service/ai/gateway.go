package ai

import "context"

// GenerationRequest carries one composed prompt and its sampling parameters.
// It is derived per turn and never persisted.
type GenerationRequest struct {
	Prompt      string
	Model       string
	Temperature *float64
}

// Gateway sends a composed prompt to a remote model and returns the generated
// continuation. Implementations are stateless; retry and rate-limit policy
// belongs to the underlying client library.
type Gateway interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}
