package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobpilot/internal/errors"
)

const (
	openAIBaseURL   = "https://api.openai.com/v1"
	deepSeekBaseURL = "https://api.deepseek.com/v1"

	openAIModel   = "gpt-4"
	deepSeekModel = "deepseek-chat"
)

// chatProvider is a chat-completions client shared by OpenAI and DeepSeek,
// whose wire protocols are identical apart from host and model name.
type chatProvider struct {
	id          string
	apiName     string
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	httpClient  *http.Client
}

var _ ProviderClient = (*chatProvider)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// NewOpenAIProvider creates the OpenAI chat-completions client.
// An empty baseURL selects the production endpoint.
func NewOpenAIProvider(baseURL, model string, temperature float32, maxTokens int, timeout time.Duration) ProviderClient {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	if model == "" {
		model = openAIModel
	}
	return &chatProvider{
		id:          ProviderOpenAI,
		apiName:     "OpenAI",
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// NewDeepSeekProvider creates the DeepSeek chat-completions client.
// An empty baseURL selects the production endpoint.
func NewDeepSeekProvider(baseURL, model string, temperature float32, maxTokens int, timeout time.Duration) ProviderClient {
	if baseURL == "" {
		baseURL = deepSeekBaseURL
	}
	if model == "" {
		model = deepSeekModel
	}
	return &chatProvider{
		id:          ProviderDeepSeek,
		apiName:     "DeepSeek",
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (p *chatProvider) ID() string {
	return p.id
}

// Invoke performs exactly one POST to the chat-completions endpoint.
// There is no retry: a failed attempt surfaces directly to the caller.
func (p *chatProvider) Invoke(ctx context.Context, apiKey, userPrompt, systemContext string) (string, *TokenUsage, error) {
	if systemContext == "" {
		systemContext = defaultSystemContext
	}

	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemContext},
			{Role: "user", Content: userPrompt},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, errors.NewInternalError(errors.ErrCodeInvalidRequest,
			"Failed to encode chat completion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nil, errors.NewInternalError(errors.ErrCodeInvalidRequest,
			"Failed to build chat completion request", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", nil, errors.NewTransportError(errors.ErrCodeProviderHTTP,
			fmt.Sprintf("%s API request failed", p.apiName), err).
			WithContext("provider", p.id)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", nil, errors.NewTransportError(errors.ErrCodeProviderHTTP,
			fmt.Sprintf("%s API error: %s", p.apiName, http.StatusText(resp.StatusCode)), nil).
			WithContext("provider", p.id).
			WithContext("status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, errors.NewTransportError(errors.ErrCodeProviderHTTP,
			fmt.Sprintf("Failed to read %s API response", p.apiName), err).
			WithContext("provider", p.id)
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", nil, errors.NewContractError(errors.ErrCodeResponseMalformed,
			fmt.Sprintf("%s API returned a non-JSON response", p.apiName), err).
			WithContext("provider", p.id)
	}

	if len(completion.Choices) == 0 {
		return "", nil, errors.NewContractError(errors.ErrCodeResponseMalformed,
			fmt.Sprintf("%s API response contained no choices", p.apiName), nil).
			WithContext("provider", p.id)
	}

	var tokens *TokenUsage
	if completion.Usage != nil {
		tokens = &TokenUsage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
			TotalTokens:  completion.Usage.TotalTokens,
		}
	}

	return completion.Choices[0].Message.Content, tokens, nil
}
