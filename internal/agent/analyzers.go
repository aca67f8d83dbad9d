package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/review"
)

const (
	analysisErrorGap           = "Error analyzing resume"
	scoringErrorRecommendation = "Error generating recommendations"
)

// SentinelAnalysis is returned when the model answer cannot be parsed.
func SentinelAnalysis() review.MatchAnalysis {
	return review.MatchAnalysis{
		Strengths: []string{},
		Gaps:      []string{analysisErrorGap},
	}
}

// SentinelReview is returned when the model answer cannot be parsed. It echoes
// the analysis it was given.
func SentinelReview(analysis review.MatchAnalysis) review.ReviewResult {
	return review.ReviewResult{
		MatchDetails:     analysis.Clone(),
		Recommendations:  []string{scoringErrorRecommendation},
		KeyTalkingPoints: []string{},
	}
}

type MatchAnalyzer struct {
	base
}

func NewMatchAnalyzer(generator ai.Generator, logger *zap.Logger, opts ...Option) *MatchAnalyzer {
	return &MatchAnalyzer{base: newBase(StepAnalyzeMatch, generator, logger, opts...)}
}

// Analyze compares the extracted profile with the job description.
func (a *MatchAnalyzer) Analyze(ctx context.Context, jobDescription string, experiences []review.Experience, education []review.Education, skills []review.Skill) (review.MatchAnalysis, review.Outcome, error) {
	prompt := render(matchTemplate,
		placeholderJobDescription, jobDescription,
		placeholderExperiences, review.Listing(experiences),
		placeholderEducation, review.Listing(education),
		placeholderSkills, review.Listing(skills),
		placeholderFormatInstructions, review.MatchAnalysisSchema.FormatInstructions(),
	)

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return review.MatchAnalysis{}, a.failed(err), err
	}

	var analysis review.MatchAnalysis
	if err := review.ParseObject(raw, review.MatchAnalysisSchema, &analysis); err != nil {
		outcome := review.NewOutcome(a.step, 0, 0, []error{err})
		a.report(outcome, []error{err})
		return SentinelAnalysis(), outcome, nil
	}

	outcome := review.NewOutcome(a.step, 1, 0, nil)
	a.report(outcome, nil)
	return analysis, outcome, nil
}

type ScoreGenerator struct {
	base
}

func NewScoreGenerator(generator ai.Generator, logger *zap.Logger, opts ...Option) *ScoreGenerator {
	return &ScoreGenerator{base: newBase(StepGenerateScore, generator, logger, opts...)}
}

// Generate produces the overall score, recommendations and talking points.
func (g *ScoreGenerator) Generate(ctx context.Context, jobDescription string, analysis review.MatchAnalysis) (review.ReviewResult, review.Outcome, error) {
	prompt := render(scoreTemplate,
		placeholderJobDescription, jobDescription,
		placeholderMatchAnalysis, analysis.String(),
		placeholderFormatInstructions, review.ReviewResultSchema.FormatInstructions(),
	)

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return review.ReviewResult{}, g.failed(err), err
	}

	var result review.ReviewResult
	if err := review.ParseObject(raw, review.ReviewResultSchema, &result); err != nil {
		outcome := review.NewOutcome(g.step, 0, 0, []error{err})
		g.report(outcome, []error{err})
		return SentinelReview(analysis), outcome, nil
	}

	outcome := review.NewOutcome(g.step, 1, 0, nil)
	g.report(outcome, nil)
	return result, outcome, nil
}
