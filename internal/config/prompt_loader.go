package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptFileSlot describes one loadable prompt file: which operation it
// belongs to, whether it is the system or user half, and where the content
// should land.
type promptFileSlot struct {
	operation  string
	promptType string // "system" or "user"
	filePath   string
	target     *string
}

// promptFileSlots enumerates every configured prompt file, operation-specific
// paths taking precedence over the global ones.
func (c *Config) promptFileSlots(dest *AllLoadedPrompts) []promptFileSlot {
	pick := func(opPath, globalPath string) string {
		if opPath != "" {
			return opPath
		}
		return globalPath
	}

	return []promptFileSlot{
		{"parse", "system",
			pick(c.AI.Parse.CustomPrompts.SystemPrompts.ParseResumeFile, c.AI.CustomPrompts.SystemPrompts.ParseResumeFile),
			&dest.Parse.SystemPrompt},
		{"parse", "user",
			pick(c.AI.Parse.CustomPrompts.UserPrompts.ParseResumeFile, c.AI.CustomPrompts.UserPrompts.ParseResumeFile),
			&dest.Parse.UserPrompt},
		{"match", "system",
			pick(c.AI.Match.CustomPrompts.SystemPrompts.MatchJobsFile, c.AI.CustomPrompts.SystemPrompts.MatchJobsFile),
			&dest.Match.SystemPrompt},
		{"match", "user",
			pick(c.AI.Match.CustomPrompts.UserPrompts.MatchJobsFile, c.AI.CustomPrompts.UserPrompts.MatchJobsFile),
			&dest.Match.UserPrompt},
		{"coverLetter", "system",
			pick(c.AI.Cover.CustomPrompts.SystemPrompts.CoverLetterFile, c.AI.CustomPrompts.SystemPrompts.CoverLetterFile),
			&dest.Cover.SystemPrompt},
		{"coverLetter", "user",
			pick(c.AI.Cover.CustomPrompts.UserPrompts.CoverLetterFile, c.AI.CustomPrompts.UserPrompts.CoverLetterFile),
			&dest.Cover.UserPrompt},
		{"questions", "system",
			pick(c.AI.Questions.CustomPrompts.SystemPrompts.InterviewQuestionsFile, c.AI.CustomPrompts.SystemPrompts.InterviewQuestionsFile),
			&dest.Questions.SystemPrompt},
		{"questions", "user",
			pick(c.AI.Questions.CustomPrompts.UserPrompts.InterviewQuestionsFile, c.AI.CustomPrompts.UserPrompts.InterviewQuestionsFile),
			&dest.Questions.UserPrompt},
		{"optimize", "system",
			pick(c.AI.Optimize.CustomPrompts.SystemPrompts.OptimizeResumeFile, c.AI.CustomPrompts.SystemPrompts.OptimizeResumeFile),
			&dest.Optimize.SystemPrompt},
		{"optimize", "user",
			pick(c.AI.Optimize.CustomPrompts.UserPrompts.OptimizeResumeFile, c.AI.CustomPrompts.UserPrompts.OptimizeResumeFile),
			&dest.Optimize.UserPrompt},
	}
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	var fresh AllLoadedPrompts

	loadedCount := 0
	for _, slot := range c.promptFileSlots(&fresh) {
		if slot.filePath == "" {
			continue
		}
		content, err := loadPromptFromFile(slot.filePath, slot.promptType, slot.operation)
		if err != nil {
			return err
		}
		*slot.target = content
		loadedCount++
	}

	setLoadedPrompts(fresh)

	if loadedCount == 0 {
		log.Println("[CONFIG] No custom prompt files configured - using config/built-in prompts")
	} else {
		log.Printf("[CONFIG] Loaded %d custom prompt file(s)", loadedCount)
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	var scratch AllLoadedPrompts
	for _, slot := range c.promptFileSlots(&scratch) {
		if slot.filePath == "" {
			continue
		}

		absPath, err := filepath.Abs(slot.filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", slot.promptType, slot.operation, slot.filePath))
			continue
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", slot.promptType, slot.operation, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// promptFilePaths returns the distinct configured prompt file paths, used by
// the prompt watcher to know what to watch.
func (c *Config) promptFilePaths() []string {
	seen := make(map[string]struct{})
	var paths []string

	var scratch AllLoadedPrompts
	for _, slot := range c.promptFileSlots(&scratch) {
		if slot.filePath == "" {
			continue
		}
		absPath, err := filepath.Abs(slot.filePath)
		if err != nil {
			continue
		}
		if _, ok := seen[absPath]; ok {
			continue
		}
		seen[absPath] = struct{}{}
		paths = append(paths, absPath)
	}

	return paths
}
