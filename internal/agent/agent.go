// Package agent holds the LLM-backed steps of a review: three extractors that
// turn a résumé into records, the match analyzer and the score generator.
//
// Agents are stateless and safe for concurrent use. Parse failures never leave
// an agent; they degrade to fewer records or a sentinel and are reported in the
// returned review.Outcome. Completion service errors are returned unchanged.
package agent

import (
	"context"
	"embed"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/logger"
	"github.com/spigell/resume-reviewer/internal/review"
)

// Step names, shared with the workflow graph.
const (
	StepExtractExperience = "extract_experience"
	StepExtractEducation  = "extract_education"
	StepExtractSkills     = "extract_skills"
	StepAnalyzeMatch      = "analyze_match"
	StepGenerateScore     = "generate_score"
)

const defaultMaxLogLength = 200

const (
	placeholderResume             = "{{RESUME}}"
	placeholderJobDescription     = "{{JOB_DESCRIPTION}}"
	placeholderFormatInstructions = "{{FORMAT_INSTRUCTIONS}}"
	placeholderExperiences        = "{{EXPERIENCES}}"
	placeholderEducation          = "{{EDUCATION}}"
	placeholderSkills             = "{{SKILLS}}"
	placeholderMatchAnalysis      = "{{MATCH_ANALYSIS}}"
)

//go:embed prompts/*.md
var prompts embed.FS

func mustTemplate(name string) string {
	data, err := prompts.ReadFile("prompts/" + name)
	if err != nil {
		panic("agent: missing prompt template " + name)
	}
	return string(data)
}

var (
	experienceTemplate = mustTemplate("experience.md")
	educationTemplate  = mustTemplate("education.md")
	skillsTemplate     = mustTemplate("skills.md")
	matchTemplate      = mustTemplate("match.md")
	scoreTemplate      = mustTemplate("score.md")
)

// Option tweaks an agent.
type Option func(*base)

// WithMaxLogLength limits prompt and response previews in debug logs.
func WithMaxLogLength(n int) Option {
	return func(b *base) {
		if n > 0 {
			b.maxLogLen = n
		}
	}
}

type base struct {
	step      string
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func newBase(step string, generator ai.Generator, log *zap.Logger, opts ...Option) base {
	b := base{
		step:      step,
		generator: generator,
		maxLogLen: defaultMaxLogLength,
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = logger.WithFields(log, zap.String(logger.FieldStep, step))
	return b
}

// complete sends the prompt and logs previews of both sides at debug level.
func (b *base) complete(ctx context.Context, prompt string) (string, error) {
	if b.generator == nil {
		return "", errors.New("completion service is not configured")
	}

	b.logger.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.Preview(prompt, b.maxLogLen)),
	)

	raw, err := b.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	b.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.Preview(raw, b.maxLogLen)),
	)

	return raw, nil
}

func (b *base) failed(err error) review.Outcome {
	return review.Outcome{Step: b.step, Status: review.StatusFailed, Errors: 1, FirstError: err.Error()}
}

func (b *base) report(outcome review.Outcome, errs []error) {
	for _, err := range errs {
		b.logger.Warn("dropping unparseable model output", zap.Error(err))
	}
	b.logger.Info("step finished",
		zap.String("status", string(outcome.Status)),
		zap.Int("parsed", outcome.Parsed),
		zap.Int("dropped", outcome.Dropped),
	)
}

// render substitutes all placeholders in one pass so that inputs containing
// placeholder text are never expanded a second time.
func render(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}
