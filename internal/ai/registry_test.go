package ai

import (
	"testing"

	"jobpilot/internal/errors"
)

func TestRegistryListOrder(t *testing.T) {
	registry := NewRegistry()

	descriptors := registry.List()
	expectedOrder := []string{ProviderOpenAI, ProviderDeepSeek, ProviderGemini, ProviderCopilot}

	if len(descriptors) != len(expectedOrder) {
		t.Fatalf("expected %d providers, got %d", len(expectedOrder), len(descriptors))
	}

	for i, id := range expectedOrder {
		if descriptors[i].ID != id {
			t.Errorf("position %d: expected provider %s, got %s", i, id, descriptors[i].ID)
		}
	}

	// Listing again returns the same order
	again := registry.List()
	for i := range descriptors {
		if again[i].ID != descriptors[i].ID {
			t.Errorf("ordering not stable at position %d: %s vs %s", i, descriptors[i].ID, again[i].ID)
		}
	}
}

func TestRegistryListIsCopy(t *testing.T) {
	registry := NewRegistry()

	descriptors := registry.List()
	descriptors[0].DisplayName = "mutated"

	if registry.List()[0].DisplayName != "OpenAI" {
		t.Error("List must return a copy; catalog was mutated through the returned slice")
	}
}

func TestRegistryDescribe(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		id          string
		displayName string
		keyURL      string
	}{
		{ProviderOpenAI, "OpenAI", "https://platform.openai.com/api-keys"},
		{ProviderDeepSeek, "DeepSeek", "https://platform.deepseek.com/api_keys"},
		{ProviderGemini, "Google Gemini", "https://makersuite.google.com/app/apikey"},
		{ProviderCopilot, "Microsoft Copilot", "https://developer.microsoft.com/en-us/microsoft-365/dev-program"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, err := registry.Describe(tt.id)
			if err != nil {
				t.Fatalf("Describe(%s) failed: %v", tt.id, err)
			}
			if d.DisplayName != tt.displayName {
				t.Errorf("expected display name %q, got %q", tt.displayName, d.DisplayName)
			}
			if d.KeyAcquisitionURL != tt.keyURL {
				t.Errorf("expected key URL %q, got %q", tt.keyURL, d.KeyAcquisitionURL)
			}
		})
	}
}

func TestRegistryDescribeUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Describe("anthropic")
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Type != errors.ErrorTypeConfig {
		t.Errorf("expected config error type, got %s", appErr.Type)
	}
	if appErr.Code != errors.ErrCodeUnsupportedProvider {
		t.Errorf("expected code %s, got %s", errors.ErrCodeUnsupportedProvider, appErr.Code)
	}
}
