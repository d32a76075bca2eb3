package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateShippedContent(t *testing.T) {
	var out bytes.Buffer
	cmd := NewValidateCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{filepath.Join("..", "..", "content", "questions.yaml")})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "3 question(s) ok") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestValidateReportsBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(good, []byte(`{"id":"q","options":[{"correct":true,"media":{"type":"image","path":"a.png"}}]}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(bad, []byte(`{"id":"q","options":[{"media":{"type":"audio"}}]}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	cmd := NewValidateCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{good, bad})

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(out.String(), "good.json: 1 question(s) ok") {
		t.Fatalf("expected good file reported, got %q", out.String())
	}
}

func TestSampleQuestionsAreWellFormed(t *testing.T) {
	for id, q := range sampleQuestions() {
		if q.ID != id {
			t.Fatalf("sample %q has id %q", id, q.ID)
		}
		if len(q.Options) == 0 {
			t.Fatalf("sample %q has no options", id)
		}
	}
}
