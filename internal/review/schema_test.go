package review

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatInstructionsEmbedValidSchema(t *testing.T) {
	t.Parallel()

	text := ReviewResultSchema.FormatInstructions()

	blocks := fencedBlocks(text)
	if len(blocks) != 1 {
		t.Fatalf("expected one fenced schema block, got %d", len(blocks))
	}

	var schema struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal([]byte(blocks[0]), &schema); err != nil {
		t.Fatalf("schema block is not valid json: %v\n%s", err, blocks[0])
	}

	if schema.Title != "ReviewResult" {
		t.Fatalf("unexpected title %q", schema.Title)
	}

	want := []string{"overall_score", "match_details", "recommendations", "key_talking_points"}
	if strings.Join(schema.Required, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected required fields: %v", schema.Required)
	}

	if !strings.Contains(string(schema.Properties["match_details"]), `"experience_match"`) {
		t.Fatalf("expected nested match analysis schema, got %s", schema.Properties["match_details"])
	}
}

func TestListFormatInstructionsMentionDescriptions(t *testing.T) {
	t.Parallel()

	text := SkillSchema.ListFormatInstructions()

	for _, want := range []string{"JSON array", "Relevance to the job (0-1)", `"required": ["name", "category", "level", "relevance"]`} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in instructions:\n%s", want, text)
		}
	}
}

func TestListingUsesRecordRepresentation(t *testing.T) {
	t.Parallel()

	got := Listing([]Skill{
		{Name: "Go", Category: "technical", Level: "expert", Relevance: 0.9},
		{Name: "SQL", Category: "technical", Level: "intermediate", Relevance: 0.5},
	})

	want := `[Skill(name="Go", category="technical", level="expert", relevance=0.90), ` +
		`Skill(name="SQL", category="technical", level="intermediate", relevance=0.50)]`
	if got != want {
		t.Fatalf("unexpected listing:\n got %s\nwant %s", got, want)
	}

	if Listing[Experience](nil) != "[]" {
		t.Fatalf("expected empty listing")
	}
}

func TestCloneOwnsSlices(t *testing.T) {
	t.Parallel()

	original := MatchAnalysis{Strengths: []string{"Go"}, Gaps: []string{"Kafka"}}
	clone := original.Clone()
	clone.Gaps[0] = "changed"

	if original.Gaps[0] != "Kafka" {
		t.Fatalf("clone shares backing array with original")
	}
}
