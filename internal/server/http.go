package server

import (
	"time"

	"jobpilot/internal/config"
	jobpilotErrors "jobpilot/internal/errors"
	"jobpilot/internal/store"
	"jobpilot/internal/types"
)

// ParseResumeRequest represents the request body for the parse endpoint.
// Provider and APIKey select the AI credential for this request; when absent
// and a userId is given, the stored profile credential is used instead.
type ParseResumeRequest struct {
	ResumeText string `json:"resumeText"`
	UserID     string `json:"userId,omitempty"`
	Provider   string `json:"provider,omitempty"`
	APIKey     string `json:"apiKey,omitempty"`
}

// MatchJobsRequest represents the request body for the match endpoint
type MatchJobsRequest struct {
	Resume      *types.ResumeRecord `json:"resume,omitempty"`
	Jobs        []types.JobListing  `json:"jobs"`
	Preferences types.Preferences   `json:"preferences"`
	UserID      string              `json:"userId,omitempty"`
	Provider    string              `json:"provider,omitempty"`
	APIKey      string              `json:"apiKey,omitempty"`
}

// CoverLetterRequest represents the request body for the cover letter endpoint
type CoverLetterRequest struct {
	Resume         *types.ResumeRecord `json:"resume,omitempty"`
	JobDescription string              `json:"jobDescription"`
	CompanyName    string              `json:"companyName"`
	JobID          string              `json:"jobId,omitempty"`
	UserID         string              `json:"userId,omitempty"`
	Provider       string              `json:"provider,omitempty"`
	APIKey         string              `json:"apiKey,omitempty"`
}

// InterviewQuestionsRequest represents the request body for the questions endpoint
type InterviewQuestionsRequest struct {
	Resume         *types.ResumeRecord `json:"resume,omitempty"`
	JobDescription string              `json:"jobDescription"`
	JobID          string              `json:"jobId,omitempty"`
	UserID         string              `json:"userId,omitempty"`
	Provider       string              `json:"provider,omitempty"`
	APIKey         string              `json:"apiKey,omitempty"`
}

// OptimizeResumeRequest represents the request body for the optimize endpoint
type OptimizeResumeRequest struct {
	Resume         *types.ResumeRecord `json:"resume,omitempty"`
	JobDescription string              `json:"jobDescription"`
	UserID         string              `json:"userId,omitempty"`
	Provider       string              `json:"provider,omitempty"`
	APIKey         string              `json:"apiKey,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Optional persistence; nil when the store is disabled
	Store *store.Store

	// Prompt file hot-reload; nil when no prompt files are configured
	PromptWatcher *config.PromptWatcher

	// Logger
	Logger *jobpilotErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *jobpilotErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
