package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"jobpilot/internal/errors"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemini-pro"
)

// geminiProvider calls the Gemini generateContent endpoint. Unlike the
// chat-completions providers, Gemini authenticates via a key query parameter
// and takes a single text part, so the system context is prepended to the
// user prompt instead of being a separate message.
type geminiProvider struct {
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	httpClient  *http.Client
}

var _ ProviderClient = (*geminiProvider)(nil)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
		TotalTokenCount      int64 `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

// NewGeminiProvider creates the Gemini generateContent client.
// An empty baseURL selects the production endpoint.
func NewGeminiProvider(baseURL, model string, temperature float32, maxTokens int, timeout time.Duration) ProviderClient {
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	if model == "" {
		model = geminiModel
	}
	return &geminiProvider{
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (p *geminiProvider) ID() string {
	return ProviderGemini
}

// Invoke performs exactly one POST to the generateContent endpoint
func (p *geminiProvider) Invoke(ctx context.Context, apiKey, userPrompt, systemContext string) (string, *TokenUsage, error) {
	fullPrompt := userPrompt
	if systemContext != "" {
		fullPrompt = systemContext + "\n\n" + userPrompt
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fullPrompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.temperature,
			MaxOutputTokens: p.maxTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, errors.NewInternalError(errors.ErrCodeInvalidRequest,
			"Failed to encode generateContent request", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		p.baseURL, p.model, url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, errors.NewInternalError(errors.ErrCodeInvalidRequest,
			"Failed to build generateContent request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", nil, errors.NewTransportError(errors.ErrCodeProviderHTTP,
			"Gemini API request failed", err).
			WithContext("provider", ProviderGemini)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", nil, errors.NewTransportError(errors.ErrCodeProviderHTTP,
			fmt.Sprintf("Gemini API error: %s", http.StatusText(resp.StatusCode)), nil).
			WithContext("provider", ProviderGemini).
			WithContext("status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, errors.NewTransportError(errors.ErrCodeProviderHTTP,
			"Failed to read Gemini API response", err).
			WithContext("provider", ProviderGemini)
	}

	var generated geminiResponse
	if err := json.Unmarshal(body, &generated); err != nil {
		return "", nil, errors.NewContractError(errors.ErrCodeResponseMalformed,
			"Gemini API returned a non-JSON response", err).
			WithContext("provider", ProviderGemini)
	}

	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return "", nil, errors.NewContractError(errors.ErrCodeResponseMalformed,
			"Gemini API response contained no candidates", nil).
			WithContext("provider", ProviderGemini)
	}

	var tokens *TokenUsage
	if generated.UsageMetadata != nil {
		tokens = &TokenUsage{
			InputTokens:  generated.UsageMetadata.PromptTokenCount,
			OutputTokens: generated.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  generated.UsageMetadata.TotalTokenCount,
		}
	}

	return generated.Candidates[0].Content.Parts[0].Text, tokens, nil
}
