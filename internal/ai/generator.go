package ai

import "context"

// Generator is the text-completion service the review agents talk to.
// Implementations must be safe for concurrent use.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Settings configures how a provider samples completions.
type Settings struct {
	Model       string
	Temperature float32
}
