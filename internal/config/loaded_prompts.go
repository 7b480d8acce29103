package config

import (
	"sync"
)

var (
	loadedPrompts   AllLoadedPrompts
	loadedPromptsMu sync.RWMutex
)

// OperationLoadedPrompts holds the prompt pair loaded from files for one operation
type OperationLoadedPrompts struct {
	SystemPrompt string
	UserPrompt   string
}

// AllLoadedPrompts holds file-loaded prompts for every operation
type AllLoadedPrompts struct {
	Parse     OperationLoadedPrompts
	Match     OperationLoadedPrompts
	Cover     OperationLoadedPrompts
	Questions OperationLoadedPrompts
	Optimize  OperationLoadedPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an operation type.
// Empty fields mean no file-based prompt was configured for that slot.
func GetPromptsForOperation(operationType string) OperationLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()

	switch operationType {
	case "parse":
		return loadedPrompts.Parse
	case "match":
		return loadedPrompts.Match
	case "cover_letter":
		return loadedPrompts.Cover
	case "questions":
		return loadedPrompts.Questions
	case "optimize":
		return loadedPrompts.Optimize
	default:
		return OperationLoadedPrompts{}
	}
}

// GetLoadedPrompts returns a snapshot of all file-loaded prompts
func GetLoadedPrompts() AllLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

// setLoadedPrompts replaces the loaded prompt set atomically. Used by the
// initial load and by the prompt file watcher on reload.
func setLoadedPrompts(prompts AllLoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = prompts
}
