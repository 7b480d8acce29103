package ai

import (
	"context"

	"jobpilot/internal/errors"
)

// copilotProvider is a deliberate placeholder: the Copilot integration does
// not exist yet, so every invocation fails immediately without touching the
// network. It stays in the registry so the catalog matches the UI.
type copilotProvider struct{}

var _ ProviderClient = (*copilotProvider)(nil)

// NewCopilotProvider creates the Copilot placeholder client
func NewCopilotProvider() ProviderClient {
	return &copilotProvider{}
}

func (p *copilotProvider) ID() string {
	return ProviderCopilot
}

// Invoke always fails with an unimplemented error and makes no network call
func (p *copilotProvider) Invoke(_ context.Context, _, _, _ string) (string, *TokenUsage, error) {
	return "", nil, errors.NewUnimplementedError(errors.ErrCodeNotImplemented,
		"Microsoft Copilot API integration not yet implemented", nil).
		WithContext("provider", ProviderCopilot)
}
