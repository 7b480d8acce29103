package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

// Operation type identifiers used for configuration lookup, prompt
// resolution, tracing and metrics
const (
	OperationParse     = "parse"
	OperationMatch     = "match"
	OperationCover     = "cover_letter"
	OperationQuestions = "questions"
	OperationOptimize  = "optimize"
)

// genericOperationErrors are the legacy single-error-per-operation messages
// used when ai.collapseErrors is enabled
var genericOperationErrors = map[string]string{
	OperationParse:     "Failed to parse resume. Please check your AI provider settings and try again.",
	OperationMatch:     "Failed to match jobs. Please try again.",
	OperationCover:     "Failed to generate cover letter. Please try again.",
	OperationQuestions: "Failed to generate interview questions. Please try again.",
	OperationOptimize:  "Failed to optimize resume. Please try again.",
}

// rawResponseContextLimit caps how much offending provider output is
// attached to a contract error for diagnostics
const rawResponseContextLimit = 500

// Service runs one AI operation type end to end: prompt assembly, gateway
// invocation, response sanitization, structural parsing and schema
// validation. The credential is passed explicitly on every call; the service
// holds no provider key state.
type Service struct {
	gateway       *Gateway
	config        *config.OperationAIConfig
	logger        *errors.Logger
	operationType string
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	logger.Debug("Initializing AI service",
		"operation_type", operationType,
		"timeout", *cfg.Timeout,
		"temperature", *cfg.Temperature,
		"max_tokens", *cfg.MaxTokens,
		"use_system_prompts", *cfg.UseSystemPrompts,
		"collapse_errors", cfg.CollapseErrors)

	return &Service{
		gateway:       NewGateway(cfg, operationType, logger),
		config:        cfg,
		logger:        logger,
		operationType: operationType,
	}, nil
}

// Gateway exposes the underlying gateway for health and stats reporting
func (s *Service) Gateway() *Gateway {
	return s.gateway
}

// ParseResume extracts a structured ResumeRecord from raw resume text
func (s *Service) ParseResume(ctx context.Context, rawText string, cred types.Credential) (types.ResumeRecord, *TokenUsage, error) {
	userPrompt := fmt.Sprintf(s.getUserPrompt(), rawText)

	raw, tokens, err := s.invoke(ctx, cred, userPrompt)
	if err != nil {
		return types.ResumeRecord{}, nil, s.operationError(err)
	}

	record, err := decodeJSONResponse[types.ResumeRecord](raw)
	if err != nil {
		return types.ResumeRecord{}, nil, s.operationError(err)
	}

	if err := validateResumeRecord(record); err != nil {
		return types.ResumeRecord{}, nil, s.operationError(err)
	}

	return record, tokens, nil
}

// MatchJobs scores the candidate against each job listing. Matches are
// returned in provider order; sorting by score is the caller's concern.
func (s *Service) MatchJobs(ctx context.Context, resume types.ResumeRecord, jobs []types.JobListing, prefs types.Preferences, cred types.Credential) ([]types.JobMatch, *TokenUsage, error) {
	resumeJSON, err := marshalForPrompt(resume)
	if err != nil {
		return nil, nil, s.operationError(err)
	}
	prefsJSON, err := marshalForPrompt(prefs)
	if err != nil {
		return nil, nil, s.operationError(err)
	}
	jobsJSON, err := marshalForPrompt(jobs)
	if err != nil {
		return nil, nil, s.operationError(err)
	}

	userPrompt := fmt.Sprintf(s.getUserPrompt(), resumeJSON, prefsJSON, jobsJSON)

	raw, tokens, err := s.invoke(ctx, cred, userPrompt)
	if err != nil {
		return nil, nil, s.operationError(err)
	}

	matches, err := decodeJSONResponse[[]types.JobMatch](raw)
	if err != nil {
		return nil, nil, s.operationError(err)
	}

	if err := validateJobMatches(matches); err != nil {
		return nil, nil, s.operationError(err)
	}

	return matches, tokens, nil
}

// GenerateCoverLetter produces a free-text cover letter for one application
func (s *Service) GenerateCoverLetter(ctx context.Context, resume types.ResumeRecord, jobDescription, companyName string, cred types.Credential) (types.CoverLetter, *TokenUsage, error) {
	summary := resume.Summary
	if summary == "" {
		summary = "Not provided"
	}
	experienceJSON, err := marshalForPrompt(resume.Experience)
	if err != nil {
		return types.CoverLetter{}, nil, s.operationError(err)
	}

	userPrompt := fmt.Sprintf(s.getUserPrompt(),
		resume.FullName,
		resume.Email,
		summary,
		experienceJSON,
		strings.Join(resume.Skills, ", "),
		companyName,
		jobDescription)

	raw, tokens, err := s.invoke(ctx, cred, userPrompt)
	if err != nil {
		return types.CoverLetter{}, nil, s.operationError(err)
	}

	return types.CoverLetter{
		Company: companyName,
		Content: strings.TrimSpace(raw),
	}, tokens, nil
}

// GenerateInterviewQuestions produces preparation questions for one job
func (s *Service) GenerateInterviewQuestions(ctx context.Context, jobDescription string, resume types.ResumeRecord, cred types.Credential) (types.InterviewPrep, *TokenUsage, error) {
	background := struct {
		Experience []types.ExperienceEntry `json:"experience"`
		Skills     []string                `json:"skills"`
		Education  []types.EducationEntry  `json:"education"`
	}{
		Experience: resume.Experience,
		Skills:     resume.Skills,
		Education:  resume.Education,
	}
	backgroundJSON, err := marshalForPrompt(background)
	if err != nil {
		return types.InterviewPrep{}, nil, s.operationError(err)
	}

	userPrompt := fmt.Sprintf(s.getUserPrompt(), jobDescription, backgroundJSON)

	raw, tokens, err := s.invoke(ctx, cred, userPrompt)
	if err != nil {
		return types.InterviewPrep{}, nil, s.operationError(err)
	}

	questions, err := decodeJSONResponse[[]string](raw)
	if err != nil {
		return types.InterviewPrep{}, nil, s.operationError(err)
	}

	return types.InterviewPrep{Questions: questions}, tokens, nil
}

// OptimizeResume renders the resume as a LaTeX document tuned to one job posting
func (s *Service) OptimizeResume(ctx context.Context, resume types.ResumeRecord, jobDescription string, cred types.Credential) (types.OptimizedResume, *TokenUsage, error) {
	resumeJSON, err := marshalForPrompt(resume)
	if err != nil {
		return types.OptimizedResume{}, nil, s.operationError(err)
	}

	userPrompt := fmt.Sprintf(s.getUserPrompt(), jobDescription, resumeJSON)

	raw, tokens, err := s.invoke(ctx, cred, userPrompt)
	if err != nil {
		return types.OptimizedResume{}, nil, s.operationError(err)
	}

	return types.OptimizedResume{LaTeX: strings.TrimSpace(raw)}, tokens, nil
}

// invoke dispatches through the gateway, honoring the useSystemPrompts toggle
func (s *Service) invoke(ctx context.Context, cred types.Credential, userPrompt string) (string, *TokenUsage, error) {
	systemContext := ""
	if *s.config.UseSystemPrompts {
		systemContext = s.getSystemPrompt()
	}
	return s.gateway.Invoke(ctx, cred, userPrompt, systemContext)
}

// operationError optionally collapses a failure into the operation's single
// legacy error message. The underlying cause is logged either way; with
// collapsing enabled the caller only sees the generic condition.
func (s *Service) operationError(err error) error {
	if !s.config.CollapseErrors {
		return err
	}

	s.logger.LogError(err, "AI operation failed, collapsing error",
		"operation", s.operationType)

	message, ok := genericOperationErrors[s.operationType]
	if !ok {
		message = "AI operation failed. Please try again."
	}
	return errors.NewAIError(errors.ErrCodeAIServiceFailed, message, nil)
}

// decodeJSONResponse strips code fences and parses the provider output into
// the expected shape. The offending text is attached (truncated) when
// parsing fails.
func decodeJSONResponse[Out any](raw string) (Out, error) {
	var out Out
	cleaned := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, errors.NewContractError(errors.ErrCodeResponseMalformed,
			"AI response is not valid JSON", err).
			WithContext("raw_response", truncateForDiagnostics(cleaned))
	}
	return out, nil
}

// marshalForPrompt renders a value as indented JSON for prompt embedding
func marshalForPrompt(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeInvalidRequest,
			"Failed to encode prompt payload", err)
	}
	return string(data), nil
}

// validateResumeRecord enforces the required-field contract on parsed
// resumes. The AI output is untrusted input: syntactically valid JSON can
// still be missing the fields every downstream consumer assumes.
func validateResumeRecord(record types.ResumeRecord) error {
	var missing []string
	if strings.TrimSpace(record.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(record.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return errors.NewContractError(errors.ErrCodeSchemaViolation,
			"Parsed resume is missing required fields", nil).
			WithContext("missing_fields", missing)
	}
	return nil
}

// validateJobMatches enforces the match-shape contract: every entry names a
// job and carries a score within 0-100
func validateJobMatches(matches []types.JobMatch) error {
	for i, m := range matches {
		if strings.TrimSpace(m.JobID) == "" {
			return errors.NewContractError(errors.ErrCodeSchemaViolation,
				fmt.Sprintf("Job match at index %d has no jobId", i), nil)
		}
		if m.MatchScore < 0 || m.MatchScore > 100 {
			return errors.NewContractError(errors.ErrCodeSchemaViolation,
				fmt.Sprintf("Job match for %s has score %d outside 0-100", m.JobID, m.MatchScore), nil).
				WithContext("job_id", m.JobID)
		}
	}
	return nil
}

func truncateForDiagnostics(s string) string {
	if len(s) <= rawResponseContextLimit {
		return s
	}
	return s[:rawResponseContextLimit] + "..."
}

// getSystemPrompt resolves the system prompt for this operation type
func (s *Service) getSystemPrompt() string {
	loaded := config.GetPromptsForOperation(s.operationType)
	configPrompts := s.config.CustomPrompts.SystemPrompts

	switch s.operationType {
	case OperationParse:
		return resolvePrompt(loaded.SystemPrompt, configPrompts.ParseResume, DefaultSystemPrompts.ParseResume)
	case OperationMatch:
		return resolvePrompt(loaded.SystemPrompt, configPrompts.MatchJobs, DefaultSystemPrompts.MatchJobs)
	case OperationCover:
		return resolvePrompt(loaded.SystemPrompt, configPrompts.CoverLetter, DefaultSystemPrompts.CoverLetter)
	case OperationQuestions:
		return resolvePrompt(loaded.SystemPrompt, configPrompts.InterviewQuestions, DefaultSystemPrompts.InterviewQuestions)
	case OperationOptimize:
		return resolvePrompt(loaded.SystemPrompt, configPrompts.OptimizeResume, DefaultSystemPrompts.OptimizeResume)
	default:
		return ""
	}
}

// getUserPrompt resolves the user prompt template for this operation type
func (s *Service) getUserPrompt() string {
	loaded := config.GetPromptsForOperation(s.operationType)
	configPrompts := s.config.CustomPrompts.UserPrompts

	switch s.operationType {
	case OperationParse:
		return resolvePrompt(loaded.UserPrompt, configPrompts.ParseResume, DefaultUserPrompts.ParseResume)
	case OperationMatch:
		return resolvePrompt(loaded.UserPrompt, configPrompts.MatchJobs, DefaultUserPrompts.MatchJobs)
	case OperationCover:
		return resolvePrompt(loaded.UserPrompt, configPrompts.CoverLetter, DefaultUserPrompts.CoverLetter)
	case OperationQuestions:
		return resolvePrompt(loaded.UserPrompt, configPrompts.InterviewQuestions, DefaultUserPrompts.InterviewQuestions)
	case OperationOptimize:
		return resolvePrompt(loaded.UserPrompt, configPrompts.OptimizeResume, DefaultUserPrompts.OptimizeResume)
	default:
		return ""
	}
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
