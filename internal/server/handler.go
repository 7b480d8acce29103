package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"jobpilot/internal/ai"
	"jobpilot/internal/errors"
	"jobpilot/internal/observability"
	"jobpilot/internal/types"
)

// resolveCredential picks the AI credential for one request. Precedence:
// explicit provider/key in the request, then the stored profile credential
// when a userId is given, then the operation's configured provider and key.
func (s *Server) resolveCredential(ctx context.Context, provider, apiKey, userID string, fallbackProvider, fallbackKey string) (types.Credential, error) {
	if provider != "" {
		return types.Credential{ProviderID: provider, APIKey: apiKey}, nil
	}

	if userID != "" && s.Store != nil {
		uid, err := uuid.Parse(userID)
		if err != nil {
			return types.Credential{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid userId: %s", userID), err)
		}
		cred, err := s.Store.Profiles.GetCredential(ctx, uid)
		if err != nil {
			return types.Credential{}, err
		}
		if cred.ProviderID != "" {
			return cred, nil
		}
	}

	return types.Credential{ProviderID: fallbackProvider, APIKey: fallbackKey}, nil
}

// resolveResume returns the request's resume, falling back to the stored
// parsed resume when only a userId is supplied.
func (s *Server) resolveResume(ctx context.Context, resume *types.ResumeRecord, userID string) (types.ResumeRecord, error) {
	if resume != nil {
		return *resume, nil
	}

	if userID != "" && s.Store != nil {
		uid, err := uuid.Parse(userID)
		if err != nil {
			return types.ResumeRecord{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid userId: %s", userID), err)
		}
		return s.Store.Profiles.GetResume(ctx, uid)
	}

	return types.ResumeRecord{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
		"resume is required (inline or via userId with a stored profile)", nil)
}

// persistFor parses the userId when persistence applies to this request.
// Returns uuid.Nil when nothing should be stored.
func (s *Server) persistFor(userID string) uuid.UUID {
	if s.Store == nil || userID == "" {
		return uuid.Nil
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil
	}
	return uid
}

// createParseResumeHandler wraps the resume parse handler with observability
func (s *Server) createParseResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobpilot.api")
		ctx, span := tracer.Start(ctx, "api.parse")
		defer span.End()

		var req ParseResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		if len(req.ResumeText) > int(s.MaxRequestSize) {
			err := fmt.Errorf("resume text too large: %d chars", len(req.ResumeText))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Resume text too large", fmt.Sprintf("resumeText exceeds size limit of %d characters", s.MaxRequestSize), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "parse"),
		)

		parseConfig := s.AppConfig.GetParseConfig()
		aiService, err := ai.NewService(&parseConfig, ai.OperationParse, s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		cred, err := s.resolveCredential(ctx, req.Provider, req.APIKey, req.UserID, parseConfig.Provider, parseConfig.APIKey)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		metrics := om.GetMetrics()
		var result types.ResumeRecord
		err = metrics.TrackAIOperationWithTokens(ctx, "parse", func(ctx context.Context) *observability.AIOperationResult {
			record, tokenUsage, aiErr := aiService.ParseResume(ctx, req.ResumeText, cred)
			result = record
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, om)
			writeAppError(w, err)
			return
		}

		if uid := s.persistFor(req.UserID); uid != uuid.Nil {
			if storeErr := s.Store.Profiles.UpsertResume(ctx, uid, result); storeErr != nil {
				s.Logger.LogError(storeErr, "Failed to persist parsed resume", "user_id", uid.String())
			}
		}

		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, om,
			attribute.Int("output.skills_count", len(result.Skills)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.skills_count", len(result.Skills)),
		)

		writeJSONResponse(w, result)
	}
}

// createMatchJobsHandler wraps the job matching handler with observability
func (s *Server) createMatchJobsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobpilot.api")
		ctx, span := tracer.Start(ctx, "api.match")
		defer span.End()

		var req MatchJobsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if len(req.Jobs) == 0 {
			err := fmt.Errorf("missing jobs")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing jobs", "jobs field must contain at least one listing", http.StatusBadRequest)
			return
		}

		resume, err := s.resolveResume(ctx, req.Resume, req.UserID)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Int("request.jobs_count", len(req.Jobs)),
			attribute.String("operation", "match"),
		)

		matchConfig := s.AppConfig.GetMatchConfig()
		aiService, err := ai.NewService(&matchConfig, ai.OperationMatch, s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		cred, err := s.resolveCredential(ctx, req.Provider, req.APIKey, req.UserID, matchConfig.Provider, matchConfig.APIKey)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		metrics := om.GetMetrics()
		var matches []types.JobMatch
		err = metrics.TrackAIOperationWithTokens(ctx, "match", func(ctx context.Context) *observability.AIOperationResult {
			result, tokenUsage, aiErr := aiService.MatchJobs(ctx, resume, req.Jobs, req.Preferences, cred)
			matches = result
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "jobs_matched", false, om)
			writeAppError(w, err)
			return
		}

		types.SortMatchesByScore(matches)

		if uid := s.persistFor(req.UserID); uid != uuid.Nil && s.Store.PersistMatches() {
			if storeErr := s.Store.Matches.Replace(ctx, uid, matches); storeErr != nil {
				s.Logger.LogError(storeErr, "Failed to persist job matches", "user_id", uid.String())
			}
		}

		metrics.RecordBusinessMetric(ctx, "jobs_matched", true, om,
			attribute.Int("output.matches_count", len(matches)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.matches_count", len(matches)),
		)

		writeJSONResponse(w, matches)
	}
}

// createCoverLetterHandler wraps the cover letter handler with observability
func (s *Server) createCoverLetterHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobpilot.api")
		ctx, span := tracer.Start(ctx, "api.cover_letter")
		defer span.End()

		var req CoverLetterRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.CompanyName) == "" {
			err := fmt.Errorf("missing company name")
			span.RecordError(err)
			writeErrorResponse(w, "Missing company name", "companyName field is required", http.StatusBadRequest)
			return
		}

		resume, err := s.resolveResume(ctx, req.Resume, req.UserID)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "cover_letter"),
		)

		coverConfig := s.AppConfig.GetCoverLetterConfig()
		aiService, err := ai.NewService(&coverConfig, ai.OperationCover, s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		cred, err := s.resolveCredential(ctx, req.Provider, req.APIKey, req.UserID, coverConfig.Provider, coverConfig.APIKey)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		metrics := om.GetMetrics()
		var letter types.CoverLetter
		err = metrics.TrackAIOperationWithTokens(ctx, "cover_letter", func(ctx context.Context) *observability.AIOperationResult {
			result, tokenUsage, aiErr := aiService.GenerateCoverLetter(ctx, resume, req.JobDescription, req.CompanyName, cred)
			letter = result
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "cover_letter_generated", false, om)
			writeAppError(w, err)
			return
		}

		if uid := s.persistFor(req.UserID); uid != uuid.Nil {
			if _, storeErr := s.Store.Applications.SaveCoverLetter(ctx, uid, req.JobID, letter); storeErr != nil {
				s.Logger.LogError(storeErr, "Failed to persist cover letter", "user_id", uid.String())
			}
		}

		metrics.RecordBusinessMetric(ctx, "cover_letter_generated", true, om,
			attribute.Int("output.letter_length", len(letter.Content)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.letter_length", len(letter.Content)),
		)

		writeJSONResponse(w, letter)
	}
}

// createInterviewQuestionsHandler wraps the interview questions handler with observability
func (s *Server) createInterviewQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobpilot.api")
		ctx, span := tracer.Start(ctx, "api.questions")
		defer span.End()

		var req InterviewQuestionsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		resume, err := s.resolveResume(ctx, req.Resume, req.UserID)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "questions"),
		)

		questionsConfig := s.AppConfig.GetQuestionsConfig()
		aiService, err := ai.NewService(&questionsConfig, ai.OperationQuestions, s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		cred, err := s.resolveCredential(ctx, req.Provider, req.APIKey, req.UserID, questionsConfig.Provider, questionsConfig.APIKey)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		metrics := om.GetMetrics()
		var prep types.InterviewPrep
		err = metrics.TrackAIOperationWithTokens(ctx, "questions", func(ctx context.Context) *observability.AIOperationResult {
			result, tokenUsage, aiErr := aiService.GenerateInterviewQuestions(ctx, req.JobDescription, resume, cred)
			prep = result
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "interview_questions_generated", false, om)
			writeAppError(w, err)
			return
		}

		if uid := s.persistFor(req.UserID); uid != uuid.Nil {
			if _, storeErr := s.Store.Applications.SaveInterviewPrep(ctx, uid, req.JobID, prep); storeErr != nil {
				s.Logger.LogError(storeErr, "Failed to persist interview questions", "user_id", uid.String())
			}
		}

		metrics.RecordBusinessMetric(ctx, "interview_questions_generated", true, om,
			attribute.Int("output.questions_count", len(prep.Questions)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.questions_count", len(prep.Questions)),
		)

		writeJSONResponse(w, prep)
	}
}

// createOptimizeResumeHandler wraps the resume optimization handler with observability
func (s *Server) createOptimizeResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobpilot.api")
		ctx, span := tracer.Start(ctx, "api.optimize")
		defer span.End()

		var req OptimizeResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		resume, err := s.resolveResume(ctx, req.Resume, req.UserID)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "optimize"),
		)

		optimizeConfig := s.AppConfig.GetOptimizeConfig()
		aiService, err := ai.NewService(&optimizeConfig, ai.OperationOptimize, s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		cred, err := s.resolveCredential(ctx, req.Provider, req.APIKey, req.UserID, optimizeConfig.Provider, optimizeConfig.APIKey)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, err)
			return
		}

		metrics := om.GetMetrics()
		var optimized types.OptimizedResume
		err = metrics.TrackAIOperationWithTokens(ctx, "optimize", func(ctx context.Context) *observability.AIOperationResult {
			result, tokenUsage, aiErr := aiService.OptimizeResume(ctx, resume, req.JobDescription, cred)
			optimized = result
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_optimized", false, om)
			writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_optimized", true, om,
			attribute.Int("output.latex_length", len(optimized.LaTeX)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.latex_length", len(optimized.LaTeX)),
		)

		writeJSONResponse(w, optimized)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSONResponse encodes a successful response body
func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
