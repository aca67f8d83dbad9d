package workflow

import (
	"github.com/spigell/resume-reviewer/internal/agent"
	"github.com/spigell/resume-reviewer/internal/review"
)

// State is shared by all nodes of one run. Extraction fields stay nil until
// their node finishes; an empty slice means the node ran and found nothing.
type State struct {
	RunID          string                    `json:"run_id"`
	Resume         string                    `json:"resume"`
	JobDescription string                    `json:"job_description"`
	Experiences    []review.Experience       `json:"experiences"`
	Education      []review.Education        `json:"education"`
	Skills         []review.Skill            `json:"skills"`
	MatchAnalysis  *review.MatchAnalysis     `json:"match_analysis"`
	ReviewResult   *review.ReviewResult      `json:"review_result"`
	Outcomes       map[string]review.Outcome `json:"outcomes"`
}

// Update is the partial state a node returns. Only non-nil fields are merged.
type Update struct {
	Outcome       review.Outcome
	Experiences   []review.Experience
	Education     []review.Education
	Skills        []review.Skill
	MatchAnalysis *review.MatchAnalysis
	ReviewResult  *review.ReviewResult
}

func newState(runID, resume, jobDescription string) State {
	outcomes := make(map[string]review.Outcome, len(nodeNames))
	for _, name := range nodeNames {
		outcomes[name] = review.Outcome{Step: name, Status: review.StatusPending}
	}
	return State{
		RunID:          runID,
		Resume:         resume,
		JobDescription: jobDescription,
		Outcomes:       outcomes,
	}
}

// Completed reports whether the step finished, degraded or not.
func (s State) Completed(step string) bool {
	return s.Outcomes[step].Finished()
}

func (s *State) merge(u Update) {
	if u.Experiences != nil {
		s.Experiences = u.Experiences
	}
	if u.Education != nil {
		s.Education = u.Education
	}
	if u.Skills != nil {
		s.Skills = u.Skills
	}
	if u.MatchAnalysis != nil {
		s.MatchAnalysis = u.MatchAnalysis
	}
	if u.ReviewResult != nil {
		s.ReviewResult = u.ReviewResult
	}
	s.Outcomes[u.Outcome.Step] = u.Outcome
}

// snapshot copies the outcome map so nodes never observe concurrent merges.
// Record slices are replaced on merge and never mutated in place.
func (s State) snapshot() State {
	outcomes := make(map[string]review.Outcome, len(s.Outcomes))
	for k, v := range s.Outcomes {
		outcomes[k] = v
	}
	s.Outcomes = outcomes
	return s
}

var nodeNames = []string{
	agent.StepExtractExperience,
	agent.StepExtractEducation,
	agent.StepExtractSkills,
	agent.StepAnalyzeMatch,
	agent.StepGenerateScore,
}
