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

	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

// stubProviderServer serves a fixed chat completion whose content is the
// given payload
func stubProviderServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(chatCompletionResponse(payload))); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
}

// countingProviderServer is stubProviderServer plus a counter of how many
// HTTP requests actually reached the provider
func countingProviderServer(t *testing.T, payload string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if _, err := w.Write([]byte(chatCompletionResponse(payload))); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	return server, &calls
}

func newTestService(t *testing.T, operationType string, serverURL string) *Service {
	t.Helper()
	cfg := testOperationConfig(map[string]string{ProviderOpenAI: serverURL})
	svc, err := NewService(cfg, operationType, testLogger(t))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

var testCred = types.Credential{ProviderID: ProviderOpenAI, APIKey: "test-key"}

func TestParseResumeHappyPath(t *testing.T) {
	record := types.ResumeRecord{
		FullName: "Dana Smith",
		Email:    "dana@example.com",
		Skills:   []string{"Go", "SQL"},
	}
	payload, _ := json.Marshal(record)

	// Providers routinely wrap JSON in markdown fences; the service must strip them
	server := stubProviderServer(t, "```json\n"+string(payload)+"\n```")
	defer server.Close()

	svc := newTestService(t, OperationParse, server.URL)
	got, tokens, err := svc.ParseResume(context.Background(), "raw resume text", testCred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FullName != "Dana Smith" || got.Email != "dana@example.com" {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Skills) != 2 {
		t.Errorf("expected 2 skills, got %v", got.Skills)
	}
	if tokens == nil || tokens.TotalTokens != 46 {
		t.Errorf("expected token usage passthrough, got %+v", tokens)
	}
}

func TestParseResumeInvalidJSONIsContractError(t *testing.T) {
	server := stubProviderServer(t, "I could not parse that resume, sorry!")
	defer server.Close()

	svc := newTestService(t, OperationParse, server.URL)
	_, _, err := svc.ParseResume(context.Background(), "raw resume text", testCred)
	if err == nil {
		t.Fatal("expected error for non-JSON completion")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeResponseMalformed {
		t.Errorf("expected RESPONSE_MALFORMED, got %s", appErr.Code)
	}
}

func TestParseResumeMissingRequiredFields(t *testing.T) {
	// Valid JSON but missing fullName and email
	server := stubProviderServer(t, `{"phone": "555-0100", "skills": ["Go"]}`)
	defer server.Close()

	svc := newTestService(t, OperationParse, server.URL)
	_, _, err := svc.ParseResume(context.Background(), "raw resume text", testCred)
	if err == nil {
		t.Fatal("expected schema violation")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeSchemaViolation {
		t.Errorf("expected SCHEMA_VIOLATION, got %s", appErr.Code)
	}
}

func TestParseResumeCollapsedError(t *testing.T) {
	server := stubProviderServer(t, "not json")
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderOpenAI: server.URL})
	cfg.CollapseErrors = true
	svc, err := NewService(cfg, OperationParse, testLogger(t))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	_, _, err = svc.ParseResume(context.Background(), "raw resume text", testCred)
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	// Collapsing replaces the specific failure with the operation's generic message
	if appErr.Type != errors.ErrorTypeAI {
		t.Errorf("expected collapsed ai error type, got %s", appErr.Type)
	}
	if appErr.Message != genericOperationErrors[OperationParse] {
		t.Errorf("expected generic parse message, got %q", appErr.Message)
	}
}

func TestMatchJobsHappyPath(t *testing.T) {
	matches := []types.JobMatch{
		{JobID: "job-2", MatchScore: 55, Reasons: []string{"partial skill overlap"}},
		{JobID: "job-1", MatchScore: 91, Reasons: []string{"strong skill overlap"}},
	}
	payload, _ := json.Marshal(matches)

	server := stubProviderServer(t, string(payload))
	defer server.Close()

	svc := newTestService(t, OperationMatch, server.URL)
	resume := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"}
	jobs := []types.JobListing{{ID: "job-1", Title: "Backend Engineer"}, {ID: "job-2", Title: "SRE"}}

	got, _, err := svc.MatchJobs(context.Background(), resume, jobs, types.Preferences{}, testCred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Provider order is preserved; sorting is the caller's concern
	if len(got) != 2 || got[0].JobID != "job-2" || got[1].JobID != "job-1" {
		t.Errorf("expected provider order preserved, got %+v", got)
	}
}

func TestMatchJobsScoreOutOfRange(t *testing.T) {
	server := stubProviderServer(t, `[{"jobId": "job-1", "matchScore": 140}]`)
	defer server.Close()

	svc := newTestService(t, OperationMatch, server.URL)
	resume := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"}
	jobs := []types.JobListing{{ID: "job-1"}}

	_, _, err := svc.MatchJobs(context.Background(), resume, jobs, types.Preferences{}, testCred)
	if err == nil {
		t.Fatal("expected schema violation for score outside 0-100")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeSchemaViolation {
		t.Errorf("expected SCHEMA_VIOLATION, got %s", appErr.Code)
	}
}

func TestMatchJobsMissingJobID(t *testing.T) {
	server := stubProviderServer(t, `[{"jobId": "", "matchScore": 50}]`)
	defer server.Close()

	svc := newTestService(t, OperationMatch, server.URL)
	resume := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"}
	jobs := []types.JobListing{{ID: "job-1"}}

	_, _, err := svc.MatchJobs(context.Background(), resume, jobs, types.Preferences{}, testCred)
	if err == nil {
		t.Fatal("expected schema violation for empty jobId")
	}
}

func TestGenerateCoverLetterTrimsAndTags(t *testing.T) {
	server := stubProviderServer(t, "\n\nDear Hiring Manager,\n\nI am excited to apply.\n\n")
	defer server.Close()

	svc := newTestService(t, OperationCover, server.URL)
	resume := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"}

	got, _, err := svc.GenerateCoverLetter(context.Background(), resume, "job description", "Acme Corp", testCred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Company != "Acme Corp" {
		t.Errorf("expected company Acme Corp, got %q", got.Company)
	}
	if strings.HasPrefix(got.Content, "\n") || strings.HasSuffix(got.Content, "\n") {
		t.Errorf("expected trimmed content, got %q", got.Content)
	}
	if !strings.Contains(got.Content, "Dear Hiring Manager") {
		t.Errorf("unexpected content: %q", got.Content)
	}
}

func TestGenerateCoverLetterEmptyJobDescriptionStillInvokes(t *testing.T) {
	// The service does not second-guess sparse input; an empty job
	// description still goes to the provider, exactly once
	server, calls := countingProviderServer(t, "Dear Hiring Manager,\n\nI am excited to apply.")
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderOpenAI: server.URL})
	svc, err := NewService(cfg, OperationCover, testLogger(t))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	resume := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"}

	got, _, err := svc.GenerateCoverLetter(context.Background(), resume, "", "Acme Corp", testCred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Company != "Acme Corp" || got.Content == "" {
		t.Errorf("unexpected letter: %+v", got)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 provider call, got %d", n)
	}
}

func TestGenerateInterviewQuestions(t *testing.T) {
	server := stubProviderServer(t, `["Tell me about yourself", "Why this role?"]`)
	defer server.Close()

	svc := newTestService(t, OperationQuestions, server.URL)
	resume := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"}

	got, _, err := svc.GenerateInterviewQuestions(context.Background(), "job description", resume, testCred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %v", got.Questions)
	}
	if got.Questions[0] != "Tell me about yourself" {
		t.Errorf("unexpected first question: %q", got.Questions[0])
	}
}

func TestGenerateInterviewQuestionsNotMemoized(t *testing.T) {
	// Identical inputs are never served from a cache; every invocation is
	// an independent provider call
	server, calls := countingProviderServer(t, `["Tell me about yourself", "Why this role?"]`)
	defer server.Close()

	cfg := testOperationConfig(map[string]string{ProviderOpenAI: server.URL})
	svc, err := NewService(cfg, OperationQuestions, testLogger(t))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	resume := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"}

	for i := 0; i < 2; i++ {
		got, _, err := svc.GenerateInterviewQuestions(context.Background(), "job description", resume, testCred)
		if err != nil {
			t.Fatalf("invocation %d: unexpected error: %v", i+1, err)
		}
		if len(got.Questions) != 2 {
			t.Fatalf("invocation %d: expected 2 questions, got %v", i+1, got.Questions)
		}
	}

	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 independent provider calls, got %d", n)
	}
}

func TestOptimizeResumeReturnsLaTeX(t *testing.T) {
	latex := `\documentclass{article}\begin{document}Dana Smith\end{document}`
	server := stubProviderServer(t, "  "+latex+"  ")
	defer server.Close()

	svc := newTestService(t, OperationOptimize, server.URL)
	resume := types.ResumeRecord{FullName: "Dana Smith", Email: "dana@example.com"}

	got, _, err := svc.OptimizeResume(context.Background(), resume, "job description", testCred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LaTeX != latex {
		t.Errorf("expected trimmed LaTeX source, got %q", got.LaTeX)
	}
}

func TestOperationErrorPassthroughWhenNotCollapsed(t *testing.T) {
	server := stubProviderServer(t, "not json")
	defer server.Close()

	svc := newTestService(t, OperationParse, server.URL)
	_, _, err := svc.ParseResume(context.Background(), "raw", testCred)

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	// Without collapsing, the caller sees the specific contract failure
	if appErr.Type != errors.ErrorTypeContract {
		t.Errorf("expected contract error type, got %s", appErr.Type)
	}
}
