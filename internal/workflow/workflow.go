// Package workflow wires the review agents into a fixed graph:
//
//	extract_experience ─┐
//	extract_education  ─┼─> analyze_match ─> generate_score
//	extract_skills     ─┘
//
// The three extractors run concurrently. analyze_match starts once all of them
// are terminal and generate_score once analyze_match is.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/agent"
	"github.com/spigell/resume-reviewer/internal/logger"
	"github.com/spigell/resume-reviewer/internal/review"
)

// ErrInvalidInput is returned by Run when the résumé or job description is blank.
var ErrInvalidInput = errors.New("invalid review input")

type ExperienceExtractor interface {
	Extract(ctx context.Context, resume string) ([]review.Experience, review.Outcome, error)
}

type EducationExtractor interface {
	Extract(ctx context.Context, resume string) ([]review.Education, review.Outcome, error)
}

type SkillsExtractor interface {
	Extract(ctx context.Context, resume, jobDescription string) ([]review.Skill, review.Outcome, error)
}

type MatchAnalyzer interface {
	Analyze(ctx context.Context, jobDescription string, experiences []review.Experience, education []review.Education, skills []review.Skill) (review.MatchAnalysis, review.Outcome, error)
}

type ScoreGenerator interface {
	Generate(ctx context.Context, jobDescription string, analysis review.MatchAnalysis) (review.ReviewResult, review.Outcome, error)
}

// Agents are built once and shared by every run.
type Agents struct {
	Experience ExperienceExtractor
	Education  EducationExtractor
	Skills     SkillsExtractor
	Analyzer   MatchAnalyzer
	Scorer     ScoreGenerator
}

func (a Agents) validate() error {
	switch {
	case a.Experience == nil:
		return errors.New("experience extractor is required")
	case a.Education == nil:
		return errors.New("education extractor is required")
	case a.Skills == nil:
		return errors.New("skills extractor is required")
	case a.Analyzer == nil:
		return errors.New("match analyzer is required")
	case a.Scorer == nil:
		return errors.New("score generator is required")
	}
	return nil
}

// Result is the outcome of one run.
type Result struct {
	State State
	// Order lists nodes in the order they were started. Entry nodes race.
	Order []string
}

// Review returns the terminal artifact, or false when scoring was skipped.
func (r *Result) Review() (review.ReviewResult, bool) {
	if r == nil || r.State.ReviewResult == nil {
		return review.ReviewResult{}, false
	}
	return *r.State.ReviewResult, true
}

type Workflow struct {
	agents Agents
	logger *zap.Logger
	graph  *graph
}

// New assembles the graph around the given agents.
func New(agents Agents, log *zap.Logger) (*Workflow, error) {
	if err := agents.validate(); err != nil {
		return nil, err
	}

	w := &Workflow{
		agents: agents,
		logger: logger.WithFields(log),
	}
	extractors := []string{agent.StepExtractExperience, agent.StepExtractEducation, agent.StepExtractSkills}
	w.graph = &graph{nodes: []node{
		{name: agent.StepExtractExperience, run: w.extractExperience},
		{name: agent.StepExtractEducation, run: w.extractEducation},
		{name: agent.StepExtractSkills, run: w.extractSkills},
		{name: agent.StepAnalyzeMatch, deps: extractors, run: w.analyzeMatch},
		{name: agent.StepGenerateScore, deps: []string{agent.StepAnalyzeMatch}, run: w.generateScore},
	}}
	return w, nil
}

// ValidateInput rejects a blank résumé or job description with ErrInvalidInput.
func ValidateInput(resume, jobDescription string) error {
	if strings.TrimSpace(resume) == "" {
		return fmt.Errorf("%w: resume must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return fmt.Errorf("%w: job description must not be empty", ErrInvalidInput)
	}
	return nil
}

// Run reviews one résumé against one job description.
func (w *Workflow) Run(ctx context.Context, resume, jobDescription string) (*Result, error) {
	if err := ValidateInput(resume, jobDescription); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := w.logger.With(zap.String(logger.FieldRunID, runID))
	log.Info("review started",
		zap.Int("resume_length", len(resume)),
		zap.Int("job_description_length", len(jobDescription)),
	)

	exec := &execution{
		graph:  w.graph,
		runID:  runID,
		logger: w.logger,
		state:  newState(runID, resume, jobDescription),
	}
	if err := exec.run(ctx); err != nil {
		log.Error("review failed", zap.Error(err))
		return nil, err
	}

	result := &Result{State: exec.state, Order: exec.order}
	if r, ok := result.Review(); ok {
		log.Info("review finished", zap.Float64("overall_score", r.OverallScore))
	} else {
		log.Warn("review finished without a result")
	}
	return result, nil
}

func (w *Workflow) extractExperience(ctx context.Context, s State) (Update, error) {
	records, outcome, err := w.agents.Experience.Extract(ctx, s.Resume)
	return Update{Outcome: outcome, Experiences: records}, err
}

func (w *Workflow) extractEducation(ctx context.Context, s State) (Update, error) {
	records, outcome, err := w.agents.Education.Extract(ctx, s.Resume)
	return Update{Outcome: outcome, Education: records}, err
}

func (w *Workflow) extractSkills(ctx context.Context, s State) (Update, error) {
	records, outcome, err := w.agents.Skills.Extract(ctx, s.Resume, s.JobDescription)
	return Update{Outcome: outcome, Skills: records}, err
}

// analyzeMatch only runs on a complete, non-empty profile.
func (w *Workflow) analyzeMatch(ctx context.Context, s State) (Update, error) {
	if reason := profileGap(s); reason != "" {
		return Update{Outcome: skipped(agent.StepAnalyzeMatch, reason)}, nil
	}

	analysis, outcome, err := w.agents.Analyzer.Analyze(ctx, s.JobDescription, s.Experiences, s.Education, s.Skills)
	if err != nil {
		return Update{Outcome: outcome}, err
	}
	return Update{Outcome: outcome, MatchAnalysis: &analysis}, nil
}

func (w *Workflow) generateScore(ctx context.Context, s State) (Update, error) {
	if s.MatchAnalysis == nil {
		return Update{Outcome: skipped(agent.StepGenerateScore, "match analysis is missing")}, nil
	}

	result, outcome, err := w.agents.Scorer.Generate(ctx, s.JobDescription, *s.MatchAnalysis)
	if err != nil {
		return Update{Outcome: outcome}, err
	}
	return Update{Outcome: outcome, ReviewResult: &result}, nil
}

// profileGap names the first extraction that is missing or empty.
func profileGap(s State) string {
	checks := []struct {
		step  string
		field string
		count int
		set   bool
	}{
		{agent.StepExtractExperience, "experiences", len(s.Experiences), s.Experiences != nil},
		{agent.StepExtractEducation, "education", len(s.Education), s.Education != nil},
		{agent.StepExtractSkills, "skills", len(s.Skills), s.Skills != nil},
	}
	for _, c := range checks {
		if !s.Completed(c.step) || !c.set {
			return c.field + " not extracted"
		}
		if c.count == 0 {
			return "no " + c.field + " extracted"
		}
	}
	return ""
}
