package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/review"
	"github.com/spigell/resume-reviewer/internal/workflow"
)

// Blank and missing fields are rejected by the workflow with ErrInvalidInput.
type reviewRequest struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
}

// reviewResponse is ReviewResult with match details flattened into the top level.
type reviewResponse struct {
	OverallScore     float64  `json:"overall_score"`
	ExperienceMatch  float64  `json:"experience_match"`
	EducationMatch   float64  `json:"education_match"`
	SkillsMatch      float64  `json:"skills_match"`
	Strengths        []string `json:"strengths"`
	Gaps             []string `json:"gaps"`
	Recommendations  []string `json:"recommendations"`
	KeyTalkingPoints []string `json:"key_talking_points"`
}

func flatten(r review.ReviewResult) reviewResponse {
	return reviewResponse{
		OverallScore:     r.OverallScore,
		ExperienceMatch:  r.MatchDetails.ExperienceMatch,
		EducationMatch:   r.MatchDetails.EducationMatch,
		SkillsMatch:      r.MatchDetails.SkillsMatch,
		Strengths:        nonNil(r.MatchDetails.Strengths),
		Gaps:             nonNil(r.MatchDetails.Gaps),
		Recommendations:  nonNil(r.Recommendations),
		KeyTalkingPoints: nonNil(r.KeyTalkingPoints),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "AI Resume Reviewer API is running"})
}

func (s *Server) review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	result, err := s.reviewer.Run(c.Request.Context(), req.Resume, req.JobDescription)
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidInput) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		s.logger.Error("review failed", zap.String("request_id", c.GetString(requestIDHeader)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error processing review: " + err.Error()})
		return
	}

	out, ok := result.Review()
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Review processing failed"})
		return
	}

	c.JSON(http.StatusOK, flatten(out))
}
