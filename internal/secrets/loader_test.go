package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	t.Setenv("RESUME_REVIEWER_TEST_KEY", "from-env")

	cases := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "file wins", src: Source{File: file, Value: "inline", Env: "RESUME_REVIEWER_TEST_KEY"}, expect: "from-file"},
		{name: "value over env", src: Source{Value: " inline ", Env: "RESUME_REVIEWER_TEST_KEY"}, expect: "inline"},
		{name: "env last", src: Source{Env: "RESUME_REVIEWER_TEST_KEY"}, expect: "from-env"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(tc.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expect {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	t.Setenv("RESUME_REVIEWER_UNSET_KEY", "")

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "missing file", src: Source{Name: "gemini api key", File: filepath.Join(dir, "nope")}, want: "reading gemini api key from file"},
		{name: "empty file", src: Source{Name: "gemini api key", File: empty}, want: "is empty"},
		{name: "empty env", src: Source{Name: "openai api key", Env: "RESUME_REVIEWER_UNSET_KEY"}, want: "set RESUME_REVIEWER_UNSET_KEY"},
		{name: "nothing", src: Source{}, want: "secret is not configured"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.src)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
