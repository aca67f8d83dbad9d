package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-reviewer/internal/ai"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-pro"
	jsonMIMEType = "application/json"
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models      contentModels
	modelName   string
	temperature float32
	jsonMode    bool
}

// Option tweaks a Generator.
type Option func(*Generator)

// WithJSONMode asks Gemini to answer with application/json content.
func WithJSONMode(enabled bool) Option {
	return func(g *Generator) {
		g.jsonMode = enabled
	}
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string, settings ai.Settings, opts ...Option) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, settings, opts...), nil
}

func newGenerator(models contentModels, settings ai.Settings, opts ...Option) *Generator {
	model := strings.TrimSpace(settings.Model)
	if model == "" {
		model = defaultModel
	}

	g := &Generator{
		models:      models,
		modelName:   model,
		temperature: settings.Temperature,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateContent sends the prompt to Gemini and returns the textual response.
// Failures are returned as is; there are no retries.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	temperature := g.temperature
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if g.jsonMode {
		config.ResponseMIMEType = jsonMIMEType
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if resp == nil {
		return "", nil
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	// An empty answer, e.g. a blocked candidate, is not a transport failure.
	// Callers degrade it like any other unparseable response.
	return strings.TrimSpace(builder.String()), nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
