package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/spigell/resume-reviewer/internal/agent"
	"github.com/spigell/resume-reviewer/internal/review"
	"github.com/spigell/resume-reviewer/internal/workflow"
)

func TestGetConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	config, err := getConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.AI.Provider != providerGemini || config.AI.MaxLogLength != 200 || config.AI.Gemini.Model != "gemini-2.5-pro" {
		t.Fatalf("unexpected ai defaults: %+v %+v", config.AI, config.AI.Gemini)
	}
	if config.Server.Addr != ":8000" {
		t.Fatalf("unexpected addr %q", config.Server.Addr)
	}
	if config.Review.ResumeFile != "resume.txt" || config.Review.JobFile != "jd.txt" || config.Review.OutputFile != "result.json" {
		t.Fatalf("unexpected review defaults: %+v", config.Review)
	}
}

func TestGetConfigReadsYAMLAndPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume-reviewer.yaml")
	content := `
ai:
  provider: openai
  temperature: 0.3
  openai:
    model: gpt-4o-mini
    base-url: http://localhost:11434/v1
server:
  cors-origins: ["http://localhost:3000"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}
	v.Set("port", "9090")

	config, err := getConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.AI.Provider != providerOpenAI || config.AI.OpenAI.Model != "gpt-4o-mini" || config.AI.OpenAI.BaseURL != "http://localhost:11434/v1" {
		t.Fatalf("unexpected ai config: %+v %+v", config.AI, config.AI.OpenAI)
	}
	if config.AI.Temperature < 0.29 || config.AI.Temperature > 0.31 {
		t.Fatalf("unexpected temperature %v", config.AI.Temperature)
	}
	if addr := listenAddr(v, false); addr != ":9090" {
		t.Fatalf("expected PORT to apply without an explicit addr, got %q", addr)
	}
	if len(config.Server.CORSOrigins) != 1 {
		t.Fatalf("unexpected cors origins: %v", config.Server.CORSOrigins)
	}
}

func TestListenAddrPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume-reviewer.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fromFile := viper.New()
	setDefaults(fromFile)
	fromFile.SetConfigFile(path)
	if err := fromFile.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}
	fromFile.Set("port", "9090")
	if addr := listenAddr(fromFile, false); addr != ":7000" {
		t.Fatalf("expected server.addr from the config file to win over PORT, got %q", addr)
	}

	fromFlag := viper.New()
	setDefaults(fromFlag)
	fromFlag.Set("server.addr", "127.0.0.1:8080")
	fromFlag.Set("port", "9090")
	if addr := listenAddr(fromFlag, true); addr != "127.0.0.1:8080" {
		t.Fatalf("expected --addr to win over PORT, got %q", addr)
	}

	defaults := viper.New()
	setDefaults(defaults)
	if addr := listenAddr(defaults, false); addr != ":8000" {
		t.Fatalf("expected default addr, got %q", addr)
	}
}

func TestNewGeneratorRejectsUnknownProvider(t *testing.T) {
	_, _, err := newGenerator(context.Background(), &AIConfig{Provider: "llama", Gemini: &GeminiConfig{}, OpenAI: &OpenAIConfig{}})
	if err == nil || !strings.Contains(err.Error(), "unsupported ai provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, provider, err := newGenerator(context.Background(), &AIConfig{Provider: "OpenAI", Gemini: &GeminiConfig{}, OpenAI: &OpenAIConfig{}})
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	if provider != providerOpenAI {
		t.Fatalf("unexpected provider %q", provider)
	}
}

func TestNewGeneratorOpenAIFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	generator, _, err := newGenerator(context.Background(), &AIConfig{Provider: providerOpenAI, Gemini: &GeminiConfig{}, OpenAI: &OpenAIConfig{Model: "gpt-4o"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generator.Model() != "gpt-4o" {
		t.Fatalf("unexpected model %q", generator.Model())
	}
}

func TestConfirmOverwrite(t *testing.T) {
	dir := t.TempDir()

	if err := confirmOverwrite(filepath.Join(dir, "missing.json"), false); err != nil {
		t.Fatalf("missing file must not need confirmation: %v", err)
	}

	existing := filepath.Join(dir, "result.json")
	if err := os.WriteFile(existing, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := confirmOverwrite(existing, true); err != nil {
		t.Fatalf("--yes must skip the prompt: %v", err)
	}
}

func TestDumpStateAndSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	result := &workflow.Result{State: workflow.State{
		RunID:  "run",
		Skills: []review.Skill{{Name: "Go", Relevance: 0.9}},
		ReviewResult: &review.ReviewResult{
			OverallScore:    0.82,
			MatchDetails:    review.MatchAnalysis{ExperienceMatch: 0.8, EducationMatch: 0.7, SkillsMatch: 0.9},
			Recommendations: []string{"Quantify impact"},
		},
		Outcomes: map[string]review.Outcome{},
	}}

	if err := dumpState(path, result.State); err != nil {
		t.Fatalf("dump: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"skills\": [\n    {\n      \"name\": \"Go\"") {
		t.Fatalf("expected two-space indented state, got:\n%s", data)
	}

	want := "overall score 0.82 (experience 0.80, education 0.70, skills 0.90), 1 recommendations"
	if got := summary(result); got != want {
		t.Fatalf("unexpected summary %q", got)
	}

	skipped := &workflow.Result{State: workflow.State{Outcomes: map[string]review.Outcome{
		agent.StepAnalyzeMatch: {Step: agent.StepAnalyzeMatch, Status: review.StatusSkipped, Reason: "no skills extracted"},
	}}}
	if got := summary(skipped); got != "no review result: no skills extracted" {
		t.Fatalf("unexpected summary %q", got)
	}
}
