package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dailybrief/internal/core"
)

func sampleResult() core.GenerationResult {
	return core.GenerationResult{
		Status: core.StatusOK,
		Research: core.ResearchBrief{
			Title:        "Savoring",
			Introduction: "Short intro.",
			KeyFindings:  "Short findings.",
			Conclusion:   "Short conclusion.",
			Source:       "Bryant (2003)",
		},
		Concepts: []core.ConceptCard{
			{Term: "Savoring", Definition: "Prolonging a good moment."},
			{Term: "Flow", Definition: "Complete absorption."},
		},
	}
}

func TestBrief(t *testing.T) {
	out := Brief(sampleResult(), 60)

	for _, want := range []string{"Savoring", "[ok]", "Introduction", "Short intro.", "Key findings", "Source: Bryant (2003)", "Concepts", "Flow", "Complete absorption."} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q", want)
		}
	}
	if strings.Contains(out, "Error:") {
		t.Error("output should not contain an error line")
	}
}

func TestBrief_ErrorAndDefaultWidth(t *testing.T) {
	res := sampleResult()
	res.Status = core.StatusError
	res.Error = "method not allowed"

	out := Brief(res, 0)
	if !strings.Contains(out, "[error]") {
		t.Error("output should contain the error badge")
	}
	if !strings.Contains(out, "Error: method not allowed") {
		t.Error("output should contain the error message")
	}
}

func TestDay(t *testing.T) {
	rec := core.DayRecord{
		UserID:   "alice",
		Date:     "2025-01-01",
		Research: sampleResult().Research,
		Concepts: sampleResult().Concepts,
		Journal:  "Felt calm.",
		Status:   core.StatusOK,
	}
	out := Day(rec, 60)
	for _, want := range []string{"2025-01-01", "alice", "Short intro.", "Journal", "Felt calm."} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q", want)
		}
	}

	empty := Day(core.DayRecord{UserID: "alice", Date: "2025-01-02"}, 60)
	if !strings.Contains(empty, "No brief stored") {
		t.Error("journal-only day should say no brief is stored")
	}
	if !strings.Contains(empty, "(empty)") {
		t.Error("empty journal should be marked")
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown("2025-01-01", sampleResult())

	if !strings.HasPrefix(md, "# Savoring\n") {
		t.Errorf("markdown should start with the title, got %q", md[:20])
	}
	for _, want := range []string{"*2025-01-01 · status: ok*", "## Key Findings", "**Source:** Bryant (2003)", "1. **Savoring**: Prolonging a good moment.", "2. **Flow**"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown should contain %q", want)
		}
	}
}

func TestWriteMarkdownFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteMarkdownFile("2025-01-01", sampleResult(), dir)
	if err != nil {
		t.Fatalf("WriteMarkdownFile failed: %v", err)
	}
	if filepath.Base(path) != "brief_2025-01-01.md" {
		t.Errorf("unexpected file name %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read brief file: %v", err)
	}
	if !strings.Contains(string(content), "## Concepts") {
		t.Error("file should contain the concepts section")
	}
}

func TestWriteMarkdownFile_InvalidDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(blocker, []byte("test"), 0644)

	if _, err := WriteMarkdownFile("2025-01-01", sampleResult(), filepath.Join(blocker, "nested")); err == nil {
		t.Error("Expected error when output directory cannot be created")
	}
}
