package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/observability"
	"jobpilot/internal/store"
	"jobpilot/internal/types"
)

func testServerLogger(t *testing.T) *errors.Logger {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

// newStatelessServer builds a server with persistence and observability
// disabled and the AI endpoint pointed at the given base URL
func newStatelessServer(t *testing.T, aiBaseURL string, apiKeys []string) (*Server, *observability.ObservabilityManager) {
	t.Helper()

	appCfg := &config.Config{}
	appCfg.AI.Provider = "openai"
	appCfg.AI.APIKey = "configured-key"
	appCfg.AI.Timeout = 5 * time.Second
	appCfg.AI.Temperature = 0.7
	appCfg.AI.MaxTokens = 2000
	appCfg.AI.UseSystemPrompts = true
	appCfg.AI.Endpoints = map[string]string{"openai": aiBaseURL}

	srv := NewServer(appCfg, ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		APIKeys:        apiKeys,
		MaxRequestSize: 1 << 20,
	}, testServerLogger(t))

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, appCfg)
	if err != nil {
		t.Fatalf("failed to create observability manager: %v", err)
	}
	return srv, om
}

// aiStubServer answers any chat completion request with the given content
func aiStubServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
			"usage": map[string]any{
				"prompt_tokens":     10,
				"completion_tokens": 20,
				"total_tokens":      30,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("failed to encode stub response: %v", err)
		}
	}))
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		expected string
	}{
		{"empty key", "", "****"},
		{"short key", "abc", "****"},
		{"exactly eight chars", "12345678", "****"},
		{"long key", "sk-1234567890abcdef", "sk-12345****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskAPIKey(tt.apiKey); got != tt.expected {
				t.Errorf("maskAPIKey(%q) = %q, want %q", tt.apiKey, got, tt.expected)
			}
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation error", errors.NewValidationError(errors.ErrCodeInvalidRequest, "bad input", nil), http.StatusBadRequest},
		{"config error", errors.NewConfigError(errors.ErrCodeUnsupportedProvider, "no such provider", nil), http.StatusBadRequest},
		{"transport error", errors.NewTransportError(errors.ErrCodeProviderHTTP, "provider returned 500", nil), http.StatusBadGateway},
		{"contract error", errors.NewContractError(errors.ErrCodeResponseMalformed, "not json", nil), http.StatusBadGateway},
		{"unimplemented error", errors.NewUnimplementedError(errors.ErrCodeNotImplemented, "copilot", nil), http.StatusNotImplemented},
		{"store not found", store.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrNotFound), http.StatusNotFound},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := newStatelessServer(t, "http://unused", []string{"valid-key"})

	handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"invalid key", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized},
		{"valid header key", map[string]string{"X-API-Key": "valid-key"}, http.StatusOK},
		{"valid bearer token", map[string]string{"Authorization": "Bearer valid-key"}, http.StatusOK},
		{"invalid bearer token", map[string]string{"Authorization": "Bearer wrong"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/parse", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthMiddlewareSkippedWithoutKeys(t *testing.T) {
	srv, _ := newStatelessServer(t, "http://unused", nil)

	handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/parse", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected open access without configured keys, got %d", rec.Code)
	}
}

func TestParseJSONRequestRequiresContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(`{"resumeText":"x"}`))
	req.Header.Set("Content-Type", "text/plain")

	var body ParseResumeRequest
	err := parseJSONRequest(req, &body)
	if err == nil || !strings.Contains(err.Error(), "application/json") {
		t.Errorf("expected content-type error, got %v", err)
	}
}

func TestParseJSONRequestRejectsBadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(`{"resumeText":`))
	req.Header.Set("Content-Type", "application/json")

	var body ParseResumeRequest
	if err := parseJSONRequest(req, &body); err == nil {
		t.Error("expected JSON parse error")
	}
}

func TestParseHandlerHappyPath(t *testing.T) {
	record := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com", Skills: []string{"Go"}}
	payload, _ := json.Marshal(record)
	stub := aiStubServer(t, string(payload))
	defer stub.Close()

	srv, om := newStatelessServer(t, stub.URL, nil)
	handler := srv.createParseResumeHandler(om)

	rec := postJSON(t, handler, "/parse", ParseResumeRequest{ResumeText: "raw resume text"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got types.ResumeRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.FullName != "Dana Smith" || got.Email != "dana@example.com" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestParseHandlerRejectsEmptyResumeText(t *testing.T) {
	srv, om := newStatelessServer(t, "http://unused", nil)
	handler := srv.createParseResumeHandler(om)

	rec := postJSON(t, handler, "/parse", ParseResumeRequest{ResumeText: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "Missing resume text" {
		t.Errorf("unexpected error: %+v", resp)
	}
}

func TestMatchHandlerRequiresJobs(t *testing.T) {
	srv, om := newStatelessServer(t, "http://unused", nil)
	handler := srv.createMatchJobsHandler(om)

	rec := postJSON(t, handler, "/match", MatchJobsRequest{
		Resume: &types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMatchHandlerRequiresResume(t *testing.T) {
	// No inline resume and no store means the resume cannot be resolved
	srv, om := newStatelessServer(t, "http://unused", nil)
	handler := srv.createMatchJobsHandler(om)

	rec := postJSON(t, handler, "/match", MatchJobsRequest{
		Jobs: []types.JobListing{{ID: "job-1", Title: "Backend Engineer"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != errors.ErrCodeInvalidRequest {
		t.Errorf("expected INVALID_REQUEST code, got %+v", resp)
	}
}

func TestMatchHandlerSortsByScore(t *testing.T) {
	matches := []types.JobMatch{
		{JobID: "job-low", MatchScore: 40},
		{JobID: "job-high", MatchScore: 95},
		{JobID: "job-mid", MatchScore: 70},
	}
	payload, _ := json.Marshal(matches)
	stub := aiStubServer(t, string(payload))
	defer stub.Close()

	srv, om := newStatelessServer(t, stub.URL, nil)
	handler := srv.createMatchJobsHandler(om)

	rec := postJSON(t, handler, "/match", MatchJobsRequest{
		Resume: &types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"},
		Jobs: []types.JobListing{
			{ID: "job-low"}, {ID: "job-high"}, {ID: "job-mid"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got []types.JobMatch
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 3 || got[0].JobID != "job-high" || got[1].JobID != "job-mid" || got[2].JobID != "job-low" {
		t.Errorf("expected matches sorted by score descending, got %+v", got)
	}
}

func TestCoverLetterHandlerRequiresCompany(t *testing.T) {
	srv, om := newStatelessServer(t, "http://unused", nil)
	handler := srv.createCoverLetterHandler(om)

	rec := postJSON(t, handler, "/cover-letter", CoverLetterRequest{
		Resume:         &types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"},
		JobDescription: "Backend role",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCoverLetterHandlerHappyPath(t *testing.T) {
	stub := aiStubServer(t, "Dear Hiring Manager,\n\nI am excited to apply to Acme Corp.")
	defer stub.Close()

	srv, om := newStatelessServer(t, stub.URL, nil)
	handler := srv.createCoverLetterHandler(om)

	rec := postJSON(t, handler, "/cover-letter", CoverLetterRequest{
		Resume:         &types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"},
		JobDescription: "Backend role",
		CompanyName:    "Acme Corp",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var letter types.CoverLetter
	if err := json.Unmarshal(rec.Body.Bytes(), &letter); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if letter.Company != "Acme Corp" {
		t.Errorf("expected company Acme Corp, got %q", letter.Company)
	}
	if !strings.Contains(letter.Content, "Dear Hiring Manager") {
		t.Errorf("unexpected letter content: %q", letter.Content)
	}
}

func TestQuestionsHandlerRequiresJobDescription(t *testing.T) {
	srv, om := newStatelessServer(t, "http://unused", nil)
	handler := srv.createInterviewQuestionsHandler(om)

	rec := postJSON(t, handler, "/questions", InterviewQuestionsRequest{
		Resume: &types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOptimizeHandlerHappyPath(t *testing.T) {
	latex := `\documentclass{article}\begin{document}Dana Smith\end{document}`
	stub := aiStubServer(t, latex)
	defer stub.Close()

	srv, om := newStatelessServer(t, stub.URL, nil)
	handler := srv.createOptimizeResumeHandler(om)

	rec := postJSON(t, handler, "/optimize", OptimizeResumeRequest{
		Resume:         &types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"},
		JobDescription: "Backend role",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got types.OptimizedResume
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.LaTeX != latex {
		t.Errorf("unexpected LaTeX output: %q", got.LaTeX)
	}
}

func TestHandlerSurfacesProviderFailureAsBadGateway(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer stub.Close()

	srv, om := newStatelessServer(t, stub.URL, nil)
	handler := srv.createParseResumeHandler(om)

	rec := postJSON(t, handler, "/parse", ParseResumeRequest{ResumeText: "raw resume text"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for provider failure, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != errors.ErrCodeProviderHTTP {
		t.Errorf("expected PROVIDER_HTTP code, got %+v", resp)
	}
}

func TestProvidersHandler(t *testing.T) {
	srv, _ := newStatelessServer(t, "http://unused", nil)

	req := httptest.NewRequest(http.MethodGet, "/providers", nil)
	rec := httptest.NewRecorder()
	srv.providersHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Providers []struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
		} `json:"providers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Providers) != 4 {
		t.Fatalf("expected 4 providers, got %d", len(resp.Providers))
	}

	ids := make(map[string]bool)
	for _, p := range resp.Providers {
		ids[p.ID] = true
	}
	for _, want := range []string{"openai", "deepseek", "gemini", "copilot"} {
		if !ids[want] {
			t.Errorf("missing provider %q", want)
		}
	}
}

func TestProvidersHandlerRejectsPost(t *testing.T) {
	srv, _ := newStatelessServer(t, "http://unused", nil)

	req := httptest.NewRequest(http.MethodPost, "/providers", nil)
	rec := httptest.NewRecorder()
	srv.providersHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestStatsHandlerReportsDisabledRateLimiting(t *testing.T) {
	srv, _ := newStatelessServer(t, "http://unused", nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.statsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["service"] != "jobpilot" {
		t.Errorf("unexpected service name: %v", resp["service"])
	}
	rl, ok := resp["rate_limiting"].(map[string]any)
	if !ok {
		t.Fatalf("missing rate_limiting section: %v", resp)
	}
	if enabled, _ := rl["enabled"].(bool); enabled {
		t.Error("expected rate limiting reported as disabled")
	}
}
