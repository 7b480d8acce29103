package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"jobpilot/internal/ai"
	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/store"
)

// operationConfig returns the effective AI configuration for one operation
func (s *Server) operationConfig(op string) config.OperationAIConfig {
	switch op {
	case ai.OperationMatch:
		return s.AppConfig.GetMatchConfig()
	case ai.OperationCover:
		return s.AppConfig.GetCoverLetterConfig()
	case ai.OperationQuestions:
		return s.AppConfig.GetQuestionsConfig()
	case ai.OperationOptimize:
		return s.AppConfig.GetOptimizeConfig()
	default:
		return s.AppConfig.GetParseConfig()
	}
}

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler provides a health check endpoint covering circuit breaker,
// store and prompt-reload status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "jobpilot",
		"version": s.Version,
	}

	circuitBreakerStatus := s.checkCircuitBreakerHealth()
	response["circuit_breakers"] = circuitBreakerStatus

	overallHealthy := true

	storeStatus := s.checkStoreHealth()
	response["store"] = storeStatus
	if healthy, ok := storeStatus["healthy"].(bool); ok && !healthy {
		overallHealthy = false
	}

	response["prompt_reload"] = s.promptWatcherStatus()

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkCircuitBreakerHealth reports circuit breaker state per AI operation
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)

	for _, op := range []string{ai.OperationParse, ai.OperationMatch, ai.OperationCover, ai.OperationQuestions, ai.OperationOptimize} {
		opConfig := s.operationConfig(op)
		aiService, err := ai.NewService(&opConfig, op, s.Logger)
		if err != nil {
			circuitBreakerStatus[op] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", op, err),
			}
			continue
		}
		circuitBreakerStatus[op] = aiService.Gateway().GetCircuitBreakerStats()
	}

	return circuitBreakerStatus
}

// checkStoreHealth pings the Postgres store when persistence is enabled
func (s *Server) checkStoreHealth() map[string]any {
	if s.Store == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.getHealthCheckTimeout())
	defer cancel()

	status := map[string]any{
		"enabled": true,
	}
	if err := s.Store.Ping(ctx); err != nil {
		status["healthy"] = false
		status["error"] = err.Error()
	} else {
		status["healthy"] = true
	}
	return status
}

// promptWatcherStatus reports prompt file hot-reload state
func (s *Server) promptWatcherStatus() map[string]any {
	if s.PromptWatcher == nil {
		return map[string]any{
			"enabled": false,
		}
	}
	return map[string]any{
		"enabled":       true,
		"running":       s.PromptWatcher.IsRunning(),
		"watched_files": s.PromptWatcher.WatchedFiles(),
	}
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "jobpilot",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add configuration info
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// providersHandler lists the supported AI providers and their capabilities
func (s *Server) providersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	registry := ai.NewRegistry()
	response := map[string]any{
		"providers": registry.List(),
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode providers response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// statusForError maps structured error types onto HTTP status codes.
// Credential and provider selection problems are the caller's fault;
// transport and contract failures blame the upstream provider.
func statusForError(err error) int {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		if stderrors.Is(err, store.ErrNotFound) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeConfig:
		return http.StatusBadRequest
	case errors.ErrorTypeTransport, errors.ErrorTypeContract:
		return http.StatusBadGateway
	case errors.ErrorTypeUnimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError renders a structured error with the appropriate status code
func writeAppError(w http.ResponseWriter, err error) {
	status := statusForError(err)

	if stderrors.Is(err, store.ErrNotFound) {
		writeErrorResponse(w, "Not found", err.Error(), status)
		return
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		response := ErrorResponse{
			Error:   string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.Message,
		}
		if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
			log.Printf("Failed to encode error response: %v", encodeErr)
			http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
		}
		return
	}

	writeErrorResponse(w, "Internal error", err.Error(), status)
}
