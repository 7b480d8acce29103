package ai

import (
	"fmt"

	"jobpilot/internal/errors"
)

// Provider identifiers. The set is closed: every dispatchable provider is
// registered at startup and no other identifier is accepted.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
	ProviderCopilot  = "copilot"
)

// ProviderDescriptor holds display metadata for one AI provider
type ProviderDescriptor struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Description       string `json:"description"`
	KeyAcquisitionURL string `json:"keyAcquisitionUrl"`
}

// Registry is the fixed, ordered catalog of supported AI providers
type Registry struct {
	descriptors []ProviderDescriptor
	byID        map[string]ProviderDescriptor
}

// NewRegistry builds the provider catalog. Order is significant: List
// returns descriptors in the order they are registered here.
func NewRegistry() *Registry {
	descriptors := []ProviderDescriptor{
		{
			ID:                ProviderOpenAI,
			DisplayName:       "OpenAI",
			Description:       "GPT-4 and advanced language models",
			KeyAcquisitionURL: "https://platform.openai.com/api-keys",
		},
		{
			ID:                ProviderDeepSeek,
			DisplayName:       "DeepSeek",
			Description:       "Competitive AI with strong reasoning",
			KeyAcquisitionURL: "https://platform.deepseek.com/api_keys",
		},
		{
			ID:                ProviderGemini,
			DisplayName:       "Google Gemini",
			Description:       "Google's multimodal AI platform",
			KeyAcquisitionURL: "https://makersuite.google.com/app/apikey",
		},
		{
			ID:                ProviderCopilot,
			DisplayName:       "Microsoft Copilot",
			Description:       "Microsoft's AI assistant",
			KeyAcquisitionURL: "https://developer.microsoft.com/en-us/microsoft-365/dev-program",
		},
	}

	byID := make(map[string]ProviderDescriptor, len(descriptors))
	for _, d := range descriptors {
		byID[d.ID] = d
	}

	return &Registry{
		descriptors: descriptors,
		byID:        byID,
	}
}

// List returns all provider descriptors in registration order
func (r *Registry) List() []ProviderDescriptor {
	out := make([]ProviderDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Describe returns the descriptor for the given provider id
func (r *Registry) Describe(id string) (ProviderDescriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return ProviderDescriptor{}, errors.NewConfigError(errors.ErrCodeUnsupportedProvider,
			fmt.Sprintf("Unsupported AI provider: %s", id), nil)
	}
	return d, nil
}
