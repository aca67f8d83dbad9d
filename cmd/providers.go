package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/agent"
	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/ai/gemini"
	"github.com/spigell/resume-reviewer/internal/ai/openai"
	"github.com/spigell/resume-reviewer/internal/logger"
	"github.com/spigell/resume-reviewer/internal/secrets"
	"github.com/spigell/resume-reviewer/internal/workflow"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

func newGenerator(ctx context.Context, cfg *AIConfig) (ai.Generator, string, error) {
	settings := ai.Settings{Temperature: cfg.Temperature}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.Gemini.APIKeyFile,
			Value: cfg.Gemini.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, providerGemini, fmt.Errorf("%w (or ai.gemini.api-key-file)", err)
		}

		settings.Model = cfg.Gemini.Model
		generator, err := gemini.NewGenerator(ctx, apiKey, settings, gemini.WithJSONMode(cfg.JSONMode))
		if err != nil {
			return nil, providerGemini, err
		}
		return generator, providerGemini, nil
	case providerOpenAI:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			File:  cfg.OpenAI.APIKeyFile,
			Value: cfg.OpenAI.APIKey,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, providerOpenAI, fmt.Errorf("%w (or ai.openai.api-key-file)", err)
		}

		settings.Model = cfg.OpenAI.Model
		generator, err := openai.NewGenerator(apiKey, cfg.OpenAI.BaseURL, settings)
		if err != nil {
			return nil, providerOpenAI, err
		}
		return generator, providerOpenAI, nil
	default:
		return nil, provider, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// newWorkflow builds the agents once around a single generator.
func newWorkflow(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*workflow.Workflow, error) {
	generator, provider, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building %s generator: %w", provider, err)
	}

	aiLogger := logger.WithProvider(log, provider, generator.Model())
	aiLogger.Info("completion service ready", zap.Float32("temperature", cfg.Temperature))

	opts := []agent.Option{agent.WithMaxLogLength(cfg.MaxLogLength)}
	return workflow.New(workflow.Agents{
		Experience: agent.NewExperienceExtractor(generator, aiLogger, opts...),
		Education:  agent.NewEducationExtractor(generator, aiLogger, opts...),
		Skills:     agent.NewSkillsExtractor(generator, aiLogger, opts...),
		Analyzer:   agent.NewMatchAnalyzer(generator, aiLogger, opts...),
		Scorer:     agent.NewScoreGenerator(generator, aiLogger, opts...),
	}, log)
}
