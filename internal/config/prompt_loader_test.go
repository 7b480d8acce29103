package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePromptFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}
	return path
}

func TestLoadPromptsFromFiles(t *testing.T) {
	dir := t.TempDir()
	systemPath := writePromptFile(t, dir, "parse_system.txt", "You are a resume parser.\n")
	userPath := writePromptFile(t, dir, "parse_user.txt", "Parse this resume:\n{{RESUME_TEXT}}\n")

	cfg := &Config{}
	cfg.AI.CustomPrompts.SystemPrompts.ParseResumeFile = systemPath
	cfg.AI.CustomPrompts.UserPrompts.ParseResumeFile = userPath

	if err := cfg.loadPromptsFromFiles(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { setLoadedPrompts(AllLoadedPrompts{}) })

	prompts := GetPromptsForOperation("parse")
	if prompts.SystemPrompt != "You are a resume parser." {
		t.Errorf("expected trimmed system prompt, got %q", prompts.SystemPrompt)
	}
	if !strings.Contains(prompts.UserPrompt, "{{RESUME_TEXT}}") {
		t.Errorf("expected user prompt with placeholder, got %q", prompts.UserPrompt)
	}

	// Operations without configured files stay empty
	if got := GetPromptsForOperation("match"); got != (OperationLoadedPrompts{}) {
		t.Errorf("expected empty match prompts, got %+v", got)
	}
}

func TestOperationPromptFileWinsOverGlobal(t *testing.T) {
	dir := t.TempDir()
	globalPath := writePromptFile(t, dir, "global_match.txt", "global match prompt")
	opPath := writePromptFile(t, dir, "op_match.txt", "operation match prompt")

	cfg := &Config{}
	cfg.AI.CustomPrompts.SystemPrompts.MatchJobsFile = globalPath
	cfg.AI.Match.CustomPrompts.SystemPrompts.MatchJobsFile = opPath

	if err := cfg.loadPromptsFromFiles(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { setLoadedPrompts(AllLoadedPrompts{}) })

	if got := GetPromptsForOperation("match").SystemPrompt; got != "operation match prompt" {
		t.Errorf("expected operation-level file to win, got %q", got)
	}
}

func TestLoadPromptsMissingFile(t *testing.T) {
	cfg := &Config{}
	cfg.AI.CustomPrompts.SystemPrompts.OptimizeResumeFile = filepath.Join(t.TempDir(), "missing.txt")

	err := cfg.loadPromptsFromFiles()
	if err == nil {
		t.Fatal("expected error for missing prompt file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestLoadPromptsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	emptyPath := writePromptFile(t, dir, "empty.txt", "   \n\t\n")

	cfg := &Config{}
	cfg.AI.CustomPrompts.UserPrompts.InterviewQuestionsFile = emptyPath

	err := cfg.loadPromptsFromFiles()
	if err == nil {
		t.Fatal("expected error for empty prompt file")
	}
	if !strings.Contains(err.Error(), "is empty") {
		t.Errorf("expected empty-file error, got %v", err)
	}
}

func TestValidatePromptFilesAggregatesErrors(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{}
	cfg.AI.CustomPrompts.SystemPrompts.ParseResumeFile = filepath.Join(dir, "missing_a.txt")
	cfg.AI.CustomPrompts.UserPrompts.CoverLetterFile = filepath.Join(dir, "missing_b.txt")

	err := cfg.validatePromptFiles()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "missing_a.txt") || !strings.Contains(msg, "missing_b.txt") {
		t.Errorf("expected both missing files reported, got: %s", msg)
	}
}

func TestPromptFilePathsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	shared := writePromptFile(t, dir, "shared.txt", "shared prompt")

	cfg := &Config{}
	cfg.AI.CustomPrompts.SystemPrompts.ParseResumeFile = shared
	cfg.AI.CustomPrompts.SystemPrompts.MatchJobsFile = shared
	cfg.AI.CustomPrompts.UserPrompts.OptimizeResumeFile = writePromptFile(t, dir, "other.txt", "other prompt")

	paths := cfg.promptFilePaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 distinct paths, got %d: %v", len(paths), paths)
	}
}
