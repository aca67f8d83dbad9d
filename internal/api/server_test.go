package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/review"
	"github.com/spigell/resume-reviewer/internal/workflow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubReviewer struct {
	result *workflow.Result
	err    error

	resume, jobDescription string
}

func (s *stubReviewer) Run(_ context.Context, resume, jobDescription string) (*workflow.Result, error) {
	s.resume, s.jobDescription = resume, jobDescription
	if err := workflow.ValidateInput(resume, jobDescription); err != nil {
		return nil, err
	}
	return s.result, s.err
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	srv := NewServer(&stubReviewer{}, zap.NewNop(), Options{})

	rec := do(t, srv, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "ok" || body["message"] != "AI Resume Reviewer API is running" {
		t.Fatalf("unexpected body: %v", body)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestReviewFlattensResult(t *testing.T) {
	reviewer := &stubReviewer{result: &workflow.Result{State: workflow.State{ReviewResult: &review.ReviewResult{
		OverallScore: 0.82,
		MatchDetails: review.MatchAnalysis{
			ExperienceMatch: 0.8,
			EducationMatch:  0.7,
			SkillsMatch:     0.9,
			Strengths:       []string{"Go"},
		},
		Recommendations:  []string{"Quantify impact"},
		KeyTalkingPoints: []string{"Migration"},
	}}}}
	srv := NewServer(reviewer, zap.NewNop(), Options{})

	rec := do(t, srv, http.MethodPost, "/review", `{"resume":"John Doe","job_description":"Backend engineer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	if reviewer.resume != "John Doe" || reviewer.jobDescription != "Backend engineer" {
		t.Fatalf("request not forwarded: %+v", reviewer)
	}

	var got reviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OverallScore != 0.82 || got.SkillsMatch != 0.9 || got.Strengths[0] != "Go" || got.KeyTalkingPoints[0] != "Migration" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"gaps":[]`) {
		t.Fatalf("expected empty gaps list, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "match_details") {
		t.Fatalf("expected flattened response, got %s", rec.Body.String())
	}
}

func TestReviewRejectsInvalidBody(t *testing.T) {
	srv := NewServer(&stubReviewer{}, zap.NewNop(), Options{})

	for _, body := range []string{`not json`, `{"resume":1,"job_description":"x"}`} {
		rec := do(t, srv, http.MethodPost, "/review", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %q: expected 422, got %d", body, rec.Code)
		}
		if decodeBody(t, rec)["detail"] == "" {
			t.Fatalf("body %q: expected detail", body)
		}
	}
}

func TestReviewBlankFieldsShareDetail(t *testing.T) {
	srv := NewServer(&stubReviewer{}, zap.NewNop(), Options{})

	want := "invalid review input: job description must not be empty"
	for _, body := range []string{
		`{"resume":"only resume"}`,
		`{"resume":"r","job_description":""}`,
		`{"resume":"r","job_description":"   "}`,
		`{"resume":"r","job_description":null}`,
	} {
		rec := do(t, srv, http.MethodPost, "/review", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %q: expected 422, got %d", body, rec.Code)
		}
		if got := decodeBody(t, rec)["detail"]; got != want {
			t.Fatalf("body %q: unexpected detail %q", body, got)
		}
	}
}

func TestReviewErrors(t *testing.T) {
	tests := []struct {
		name     string
		reviewer *stubReviewer
		status   int
		detail   string
	}{
		{
			name:     "pipeline error",
			reviewer: &stubReviewer{err: errors.New("extract_skills: quota exceeded")},
			status:   http.StatusInternalServerError,
			detail:   "Error processing review: extract_skills: quota exceeded",
		},
		{
			name:     "no review result",
			reviewer: &stubReviewer{result: &workflow.Result{}},
			status:   http.StatusInternalServerError,
			detail:   "Review processing failed",
		},
		{
			name:     "blank input",
			reviewer: &stubReviewer{err: workflow.ErrInvalidInput},
			status:   http.StatusUnprocessableEntity,
			detail:   workflow.ErrInvalidInput.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(tt.reviewer, zap.NewNop(), Options{})

			rec := do(t, srv, http.MethodPost, "/review", `{"resume":"r","job_description":"j"}`)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if got := decodeBody(t, rec)["detail"]; got != tt.detail {
				t.Fatalf("unexpected detail %q", got)
			}
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := NewServer(&stubReviewer{}, zap.NewNop(), Options{})

	id := "2f1c7f4e-4a8b-4c38-9a3e-0d6c95b0a3f1"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, id)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != id {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	srv := NewServer(&stubReviewer{}, zap.NewNop(), Options{AllowedOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}
