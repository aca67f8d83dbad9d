package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/review"
)

// listExtractor renders a fixed template, asks for a JSON array and keeps every
// element that validates against the schema.
type listExtractor[T any] struct {
	base
	schema   review.Schema
	template string
}

func (e *listExtractor[T]) extract(ctx context.Context, pairs ...string) ([]T, review.Outcome, error) {
	pairs = append(pairs, placeholderFormatInstructions, e.schema.ListFormatInstructions())
	prompt := render(e.template, pairs...)

	raw, err := e.complete(ctx, prompt)
	if err != nil {
		return nil, e.failed(err), err
	}

	res := review.ParseList[T](raw, e.schema)
	outcome := review.NewOutcome(e.step, len(res.Records), res.Dropped, res.Errors)
	e.report(outcome, res.Errors)

	return res.Records, outcome, nil
}

type ExperienceExtractor struct {
	inner listExtractor[review.Experience]
}

func NewExperienceExtractor(generator ai.Generator, logger *zap.Logger, opts ...Option) *ExperienceExtractor {
	return &ExperienceExtractor{inner: listExtractor[review.Experience]{
		base:     newBase(StepExtractExperience, generator, logger, opts...),
		schema:   review.ExperienceSchema,
		template: experienceTemplate,
	}}
}

// Extract returns the work experiences found in the résumé, possibly none.
// The error is only set when the completion service fails.
func (e *ExperienceExtractor) Extract(ctx context.Context, resume string) ([]review.Experience, review.Outcome, error) {
	return e.inner.extract(ctx, placeholderResume, resume)
}

type EducationExtractor struct {
	inner listExtractor[review.Education]
}

func NewEducationExtractor(generator ai.Generator, logger *zap.Logger, opts ...Option) *EducationExtractor {
	return &EducationExtractor{inner: listExtractor[review.Education]{
		base:     newBase(StepExtractEducation, generator, logger, opts...),
		schema:   review.EducationSchema,
		template: educationTemplate,
	}}
}

// Extract returns the education entries found in the résumé, possibly none.
func (e *EducationExtractor) Extract(ctx context.Context, resume string) ([]review.Education, review.Outcome, error) {
	return e.inner.extract(ctx, placeholderResume, resume)
}

type SkillsExtractor struct {
	inner listExtractor[review.Skill]
}

func NewSkillsExtractor(generator ai.Generator, logger *zap.Logger, opts ...Option) *SkillsExtractor {
	return &SkillsExtractor{inner: listExtractor[review.Skill]{
		base:     newBase(StepExtractSkills, generator, logger, opts...),
		schema:   review.SkillSchema,
		template: skillsTemplate,
	}}
}

// Extract returns the résumé skills rated for relevance to the job description.
func (e *SkillsExtractor) Extract(ctx context.Context, resume, jobDescription string) ([]review.Skill, review.Outcome, error) {
	return e.inner.extract(ctx, placeholderResume, resume, placeholderJobDescription, jobDescription)
}
