package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/spigell/resume-reviewer/internal/ai"
)

const defaultModel = "gpt-4-turbo"

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// Generator sends single-message chat completions to an OpenAI compatible API.
type Generator struct {
	chat        chatCompleter
	modelName   string
	temperature float32
}

// NewGenerator creates a Generator. An empty baseURL keeps the public OpenAI endpoint.
func NewGenerator(apiKey, baseURL string, settings ai.Settings) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return newGenerator(goopenai.NewClientWithConfig(cfg), settings), nil
}

func newGenerator(chat chatCompleter, settings ai.Settings) *Generator {
	model := strings.TrimSpace(settings.Model)
	if model == "" {
		model = defaultModel
	}

	return &Generator{
		chat:        chat,
		modelName:   model,
		temperature: settings.Temperature,
	}
}

// GenerateContent sends the prompt as a user message and returns the first choice.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.chat == nil {
		return "", errors.New("openai generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	temperature := g.temperature
	if temperature == 0 {
		// zero is dropped from the request by omitempty
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := g.chat.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       g.modelName,
		Temperature: temperature,
		Messages: []goopenai.ChatCompletionMessage{{
			Role:    goopenai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	// Empty or filtered answers degrade downstream like unparseable ones.
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
