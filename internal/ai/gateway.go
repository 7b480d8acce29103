package ai

import (
	"context"
	"fmt"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Gateway dispatches AI invocations over the closed set of provider clients.
// One gateway serves one operation type; its timeout, generation settings and
// optional circuit breaker come from that operation's configuration.
//
// Guarantees: an unknown provider or missing key fails before any network
// I/O, and a dispatched invocation performs at most one outbound HTTP call.
// Nothing is cached or memoized across invocations.
type Gateway struct {
	providers     map[string]ProviderClient
	breaker       *AICircuitBreaker
	logger        *errors.Logger
	operationType string
}

// NewGateway builds the provider clients for one operation type
func NewGateway(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) *Gateway {
	timeout := *cfg.Timeout
	temperature := *cfg.Temperature
	maxTokens := *cfg.MaxTokens

	providers := map[string]ProviderClient{
		ProviderOpenAI: NewOpenAIProvider(
			cfg.Endpoints[ProviderOpenAI], cfg.Models[ProviderOpenAI],
			temperature, maxTokens, timeout),
		ProviderDeepSeek: NewDeepSeekProvider(
			cfg.Endpoints[ProviderDeepSeek], cfg.Models[ProviderDeepSeek],
			temperature, maxTokens, timeout),
		ProviderGemini: NewGeminiProvider(
			cfg.Endpoints[ProviderGemini], cfg.Models[ProviderGemini],
			temperature, maxTokens, timeout),
		ProviderCopilot: NewCopilotProvider(),
	}

	return &Gateway{
		providers:     providers,
		breaker:       NewAICircuitBreaker(operationType, cfg, logger),
		logger:        logger,
		operationType: operationType,
	}
}

// Invoke dispatches one prompt to the credential's provider and returns the
// raw completion text
func (g *Gateway) Invoke(ctx context.Context, cred types.Credential, userPrompt, systemContext string) (string, *TokenUsage, error) {
	provider, ok := g.providers[cred.ProviderID]
	if !ok {
		return "", nil, errors.NewConfigError(errors.ErrCodeUnsupportedProvider,
			fmt.Sprintf("Unsupported AI provider: %s", cred.ProviderID), nil)
	}

	// The copilot placeholder fails on its own terms, key or no key
	if cred.APIKey == "" && cred.ProviderID != ProviderCopilot {
		return "", nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			fmt.Sprintf("No API key configured for provider %s", cred.ProviderID), nil)
	}

	tracer := otel.Tracer("jobpilot.ai")
	ctx, span := tracer.Start(ctx, "ai.invoke")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", cred.ProviderID),
		attribute.String("ai.operation", g.operationType),
		attribute.Int("input.prompt_length", len(userPrompt)),
	)

	result, err := g.breaker.Execute(func() (completion, error) {
		text, tokens, err := provider.Invoke(ctx, cred.APIKey, userPrompt, systemContext)
		return completion{Text: text, Tokens: tokens}, err
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		g.logger.LogError(err, "AI invocation failed",
			"provider", cred.ProviderID,
			"operation", g.operationType)
		return "", nil, err
	}

	if result.Tokens != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", result.Tokens.InputTokens),
			attribute.Int64("ai.tokens.output", result.Tokens.OutputTokens),
			attribute.Int64("ai.tokens.total", result.Tokens.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))

	return result.Text, result.Tokens, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics for health checks
func (g *Gateway) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":   g.breaker.GetStats(),
		"overall_healthy": g.breaker.IsHealthy(),
	}
}
