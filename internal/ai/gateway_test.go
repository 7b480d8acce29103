package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

func testLogger(t *testing.T) *errors.Logger {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func testOperationConfig(endpoints map[string]string) *config.OperationAIConfig {
	timeout := 5 * time.Second
	temperature := float32(0.7)
	maxTokens := 2000
	useSystemPrompts := true
	return &config.OperationAIConfig{
		Provider:         ProviderOpenAI,
		Timeout:          &timeout,
		Temperature:      &temperature,
		MaxTokens:        &maxTokens,
		UseSystemPrompts: &useSystemPrompts,
		Endpoints:        endpoints,
	}
}

func chatCompletionResponse(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{
			"prompt_tokens":     int64(12),
			"completion_tokens": int64(34),
			"total_tokens":      int64(46),
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGatewayOpenAIWireFormat(t *testing.T) {
	var calls atomic.Int32
	var gotPath, gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(chatCompletionResponse("hello"))); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderOpenAI: server.URL})
	gw := NewGateway(cfg, OperationParse, testLogger(t))

	cred := types.Credential{ProviderID: ProviderOpenAI, APIKey: "test-key"}
	text, tokens, err := gw.Invoke(context.Background(), cred, "user prompt", "system context")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 HTTP call, got %d", got)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("expected path /chat/completions, got %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody.Model != "gpt-4" {
		t.Errorf("expected model gpt-4, got %s", gotBody.Model)
	}
	if gotBody.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", gotBody.Temperature)
	}
	if gotBody.MaxTokens != 2000 {
		t.Errorf("expected max_tokens 2000, got %d", gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Errorf("expected system+user messages, got %+v", gotBody.Messages)
	}
	if gotBody.Messages[0].Content != "system context" {
		t.Errorf("expected system context to be forwarded, got %q", gotBody.Messages[0].Content)
	}
	if text != "hello" {
		t.Errorf("expected completion text hello, got %q", text)
	}
	if tokens == nil || tokens.InputTokens != 12 || tokens.OutputTokens != 34 || tokens.TotalTokens != 46 {
		t.Errorf("unexpected token usage: %+v", tokens)
	}
}

func TestGatewayDeepSeekModel(t *testing.T) {
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if _, err := w.Write([]byte(chatCompletionResponse("ok"))); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderDeepSeek: server.URL})
	gw := NewGateway(cfg, OperationParse, testLogger(t))

	cred := types.Credential{ProviderID: ProviderDeepSeek, APIKey: "ds-key"}
	if _, _, err := gw.Invoke(context.Background(), cred, "prompt", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody.Model != "deepseek-chat" {
		t.Errorf("expected model deepseek-chat, got %s", gotBody.Model)
	}
	// With no system context the provider substitutes its default
	if gotBody.Messages[0].Content != defaultSystemContext {
		t.Errorf("expected default system context, got %q", gotBody.Messages[0].Content)
	}
}

func TestGatewayGeminiWireFormat(t *testing.T) {
	var gotPath, gotKey, gotAuth string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "gemini says hi"}}}},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderGemini: server.URL})
	gw := NewGateway(cfg, OperationParse, testLogger(t))

	cred := types.Credential{ProviderID: ProviderGemini, APIKey: "gem-key"}
	text, tokens, err := gw.Invoke(context.Background(), cred, "the prompt", "the system context")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/models/gemini-pro:generateContent" {
		t.Errorf("expected generateContent path, got %s", gotPath)
	}
	if gotKey != "gem-key" {
		t.Errorf("expected key query parameter, got %q", gotKey)
	}
	if gotAuth != "" {
		t.Errorf("gemini must not send an Authorization header, got %q", gotAuth)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("expected a single content part, got %+v", gotBody.Contents)
	}
	// System context is prepended to the prompt rather than sent separately
	part := gotBody.Contents[0].Parts[0].Text
	if !strings.HasPrefix(part, "the system context") || !strings.Contains(part, "the prompt") {
		t.Errorf("expected system context prepended to prompt, got %q", part)
	}
	if gotBody.GenerationConfig.Temperature != 0.7 || gotBody.GenerationConfig.MaxOutputTokens != 2000 {
		t.Errorf("unexpected generation config: %+v", gotBody.GenerationConfig)
	}
	if text != "gemini says hi" {
		t.Errorf("unexpected completion text: %q", text)
	}
	if tokens != nil {
		t.Errorf("expected nil token usage when usageMetadata is absent, got %+v", tokens)
	}
}

func TestGatewayCopilotNeverTouchesNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	// Even with every endpoint pointed at the test server, copilot must not call out
	cfg := testOperationConfig(map[string]string{
		ProviderOpenAI:   server.URL,
		ProviderDeepSeek: server.URL,
		ProviderGemini:   server.URL,
	})
	gw := NewGateway(cfg, OperationParse, testLogger(t))

	cred := types.Credential{ProviderID: ProviderCopilot, APIKey: "ignored"}
	_, _, err := gw.Invoke(context.Background(), cred, "prompt", "")
	if err == nil {
		t.Fatal("expected copilot to fail")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Type != errors.ErrorTypeUnimplemented {
		t.Errorf("expected unimplemented error type, got %s", appErr.Type)
	}
	if appErr.Code != errors.ErrCodeNotImplemented {
		t.Errorf("expected NOT_IMPLEMENTED code, got %s", appErr.Code)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("copilot made %d network calls, want 0", got)
	}

	// Copilot fails identically without a key
	_, _, err2 := gw.Invoke(context.Background(), types.Credential{ProviderID: ProviderCopilot}, "prompt", "")
	if err2 == nil || err2.Error() != err.Error() {
		t.Errorf("expected identical failure without key, got %v", err2)
	}
}

func TestGatewayUnsupportedProviderFailsBeforeIO(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderOpenAI: server.URL})
	gw := NewGateway(cfg, OperationParse, testLogger(t))

	cred := types.Credential{ProviderID: "claude", APIKey: "key"}
	_, _, err := gw.Invoke(context.Background(), cred, "prompt", "")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeUnsupportedProvider {
		t.Errorf("expected UNSUPPORTED_PROVIDER code, got %s", appErr.Code)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no network calls, got %d", got)
	}
}

func TestGatewayMissingAPIKeyFailsBeforeIO(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderOpenAI: server.URL})
	gw := NewGateway(cfg, OperationParse, testLogger(t))

	cred := types.Credential{ProviderID: ProviderOpenAI}
	_, _, err := gw.Invoke(context.Background(), cred, "prompt", "")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeMissingAPIKey {
		t.Errorf("expected MISSING_API_KEY code, got %s", appErr.Code)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no network calls, got %d", got)
	}
}

func TestGatewayHTTPErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderOpenAI: server.URL})
	gw := NewGateway(cfg, OperationParse, testLogger(t))

	cred := types.Credential{ProviderID: ProviderOpenAI, APIKey: "key"}
	_, _, err := gw.Invoke(context.Background(), cred, "prompt", "")
	if err == nil {
		t.Fatal("expected error on HTTP 500")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Type != errors.ErrorTypeTransport {
		t.Errorf("expected transport error type, got %s", appErr.Type)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 attempt (no retries), got %d", got)
	}
}

func TestGatewayMalformedResponseIsContractError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("not json at all")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderOpenAI: server.URL})
	gw := NewGateway(cfg, OperationParse, testLogger(t))

	cred := types.Credential{ProviderID: ProviderOpenAI, APIKey: "key"}
	_, _, err := gw.Invoke(context.Background(), cred, "prompt", "")
	if err == nil {
		t.Fatal("expected error for malformed response")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Type != errors.ErrorTypeContract {
		t.Errorf("expected contract error type, got %s", appErr.Type)
	}
	if appErr.Code != errors.ErrCodeResponseMalformed {
		t.Errorf("expected RESPONSE_MALFORMED code, got %s", appErr.Code)
	}
}
