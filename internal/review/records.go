package review

import (
	"fmt"
	"math"
	"strings"
)

// PresentEndDate marks an ongoing position in Experience.EndDate.
const PresentEndDate = "Present"

type Experience struct {
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Description string   `json:"description"`
	SkillsUsed  []string `json:"skills_used"`
}

type Education struct {
	Institution    string   `json:"institution"`
	Degree         string   `json:"degree"`
	FieldOfStudy   string   `json:"field_of_study"`
	GraduationDate string   `json:"graduation_date"`
	Achievements   []string `json:"achievements"`
}

type Skill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    string `json:"level"`
	// Relevance to the job description, clamped to [0, 1].
	Relevance float64 `json:"relevance"`
}

type MatchAnalysis struct {
	ExperienceMatch float64  `json:"experience_match"`
	EducationMatch  float64  `json:"education_match"`
	SkillsMatch     float64  `json:"skills_match"`
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
}

// ReviewResult is the terminal artifact of a review run.
type ReviewResult struct {
	OverallScore     float64       `json:"overall_score"`
	MatchDetails     MatchAnalysis `json:"match_details"`
	Recommendations  []string      `json:"recommendations"`
	KeyTalkingPoints []string      `json:"key_talking_points"`
}

var ExperienceSchema = Schema{
	Title: "Experience",
	Fields: []Field{
		{Name: "company", Type: TypeString, Description: "Name of the company"},
		{Name: "title", Type: TypeString, Description: "Job title"},
		{Name: "start_date", Type: TypeString, Description: "Start date of the job"},
		{Name: "end_date", Type: TypeString, Description: "End date of the job, or 'Present' if current"},
		{Name: "description", Type: TypeString, Description: "Description of responsibilities and achievements"},
		{Name: "skills_used", Type: TypeStringList, Description: "Skills demonstrated in this role"},
	},
}

var EducationSchema = Schema{
	Title: "Education",
	Fields: []Field{
		{Name: "institution", Type: TypeString, Description: "Name of the educational institution"},
		{Name: "degree", Type: TypeString, Description: "Degree earned"},
		{Name: "field_of_study", Type: TypeString, Description: "Field or major of study"},
		{Name: "graduation_date", Type: TypeString, Description: "Date of graduation"},
		{Name: "achievements", Type: TypeStringList, Description: "Notable achievements during education"},
	},
}

var SkillSchema = Schema{
	Title: "Skill",
	Fields: []Field{
		{Name: "name", Type: TypeString, Description: "Name of the skill"},
		{Name: "category", Type: TypeString, Description: "Category (technical, soft, domain)"},
		{Name: "level", Type: TypeString, Description: "Proficiency level (beginner, intermediate, expert)"},
		{Name: "relevance", Type: TypeNumber, Description: "Relevance to the job (0-1)"},
	},
}

var MatchAnalysisSchema = Schema{
	Title: "MatchAnalysis",
	Fields: []Field{
		{Name: "experience_match", Type: TypeNumber, Description: "How well the experience matches the job requirements (0-1)"},
		{Name: "education_match", Type: TypeNumber, Description: "How well the education matches the job requirements (0-1)"},
		{Name: "skills_match", Type: TypeNumber, Description: "How well the skills match the job requirements (0-1)"},
		{Name: "strengths", Type: TypeStringList, Description: "Candidate's key strengths for this role"},
		{Name: "gaps", Type: TypeStringList, Description: "Identified gaps in candidate's profile"},
	},
}

var ReviewResultSchema = Schema{
	Title: "ReviewResult",
	Fields: []Field{
		{Name: "overall_score", Type: TypeNumber, Description: "Overall match score (0-1)"},
		{Name: "match_details", Type: TypeObject, Description: "Detailed match analysis", Schema: &MatchAnalysisSchema},
		{Name: "recommendations", Type: TypeStringList, Description: "Recommendations for improving the resume"},
		{Name: "key_talking_points", Type: TypeStringList, Description: "Key talking points for an interview"},
	},
}

func (s *Skill) normalize() {
	s.Relevance = clampUnit(s.Relevance)
}

func (m *MatchAnalysis) normalize() {
	m.ExperienceMatch = clampUnit(m.ExperienceMatch)
	m.EducationMatch = clampUnit(m.EducationMatch)
	m.SkillsMatch = clampUnit(m.SkillsMatch)
}

func (r *ReviewResult) normalize() {
	r.OverallScore = clampUnit(r.OverallScore)
	r.MatchDetails.normalize()
}

// Clone returns a deep copy so the review owns its match details.
func (m MatchAnalysis) Clone() MatchAnalysis {
	m.Strengths = cloneStrings(m.Strengths)
	m.Gaps = cloneStrings(m.Gaps)
	return m
}

func (e Experience) String() string {
	return fmt.Sprintf("Experience(company=%q, title=%q, start_date=%q, end_date=%q, description=%q, skills_used=%s)",
		e.Company, e.Title, e.StartDate, e.EndDate, e.Description, listString(e.SkillsUsed))
}

func (e Education) String() string {
	return fmt.Sprintf("Education(institution=%q, degree=%q, field_of_study=%q, graduation_date=%q, achievements=%s)",
		e.Institution, e.Degree, e.FieldOfStudy, e.GraduationDate, listString(e.Achievements))
}

func (s Skill) String() string {
	return fmt.Sprintf("Skill(name=%q, category=%q, level=%q, relevance=%s)",
		s.Name, s.Category, s.Level, formatScore(s.Relevance))
}

func (m MatchAnalysis) String() string {
	return fmt.Sprintf("MatchAnalysis(experience_match=%s, education_match=%s, skills_match=%s, strengths=%s, gaps=%s)",
		formatScore(m.ExperienceMatch), formatScore(m.EducationMatch), formatScore(m.SkillsMatch),
		listString(m.Strengths), listString(m.Gaps))
}

// Listing renders records the way they are embedded into prompts.
func Listing[T fmt.Stringer](items []T) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func listString(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, fmt.Sprintf("%q", item))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func formatScore(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func clampUnit(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
