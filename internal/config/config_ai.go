package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.MaxTokens == nil {
		opCfg.MaxTokens = &c.AI.MaxTokens
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
	if opCfg.Endpoints == nil {
		opCfg.Endpoints = c.AI.Endpoints
	}
	if opCfg.Models == nil {
		opCfg.Models = c.AI.Models
	}
	// Error collapsing is a global behavior switch, not a per-operation knob
	opCfg.CollapseErrors = c.AI.CollapseErrors
}

// GetParseConfig returns the AI configuration for resume parsing with fallback to global config
func (c *Config) GetParseConfig() OperationAIConfig {
	config := c.AI.Parse
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.ParseResume == "" {
		config.CustomPrompts.SystemPrompts.ParseResume = c.AI.CustomPrompts.SystemPrompts.ParseResume
	}
	if config.CustomPrompts.UserPrompts.ParseResume == "" {
		config.CustomPrompts.UserPrompts.ParseResume = c.AI.CustomPrompts.UserPrompts.ParseResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ParseResumeFile == "" {
		config.CustomPrompts.SystemPrompts.ParseResumeFile = c.AI.CustomPrompts.SystemPrompts.ParseResumeFile
	}
	if config.CustomPrompts.UserPrompts.ParseResumeFile == "" {
		config.CustomPrompts.UserPrompts.ParseResumeFile = c.AI.CustomPrompts.UserPrompts.ParseResumeFile
	}

	return config
}

// GetMatchConfig returns the AI configuration for job matching with fallback to global config
func (c *Config) GetMatchConfig() OperationAIConfig {
	config := c.AI.Match
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.MatchJobs == "" {
		config.CustomPrompts.SystemPrompts.MatchJobs = c.AI.CustomPrompts.SystemPrompts.MatchJobs
	}
	if config.CustomPrompts.UserPrompts.MatchJobs == "" {
		config.CustomPrompts.UserPrompts.MatchJobs = c.AI.CustomPrompts.UserPrompts.MatchJobs
	}
	if config.CustomPrompts.SystemPrompts.MatchJobsFile == "" {
		config.CustomPrompts.SystemPrompts.MatchJobsFile = c.AI.CustomPrompts.SystemPrompts.MatchJobsFile
	}
	if config.CustomPrompts.UserPrompts.MatchJobsFile == "" {
		config.CustomPrompts.UserPrompts.MatchJobsFile = c.AI.CustomPrompts.UserPrompts.MatchJobsFile
	}

	return config
}

// GetCoverLetterConfig returns the AI configuration for cover letter generation with fallback to global config
func (c *Config) GetCoverLetterConfig() OperationAIConfig {
	config := c.AI.Cover
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.CoverLetter == "" {
		config.CustomPrompts.SystemPrompts.CoverLetter = c.AI.CustomPrompts.SystemPrompts.CoverLetter
	}
	if config.CustomPrompts.UserPrompts.CoverLetter == "" {
		config.CustomPrompts.UserPrompts.CoverLetter = c.AI.CustomPrompts.UserPrompts.CoverLetter
	}
	if config.CustomPrompts.SystemPrompts.CoverLetterFile == "" {
		config.CustomPrompts.SystemPrompts.CoverLetterFile = c.AI.CustomPrompts.SystemPrompts.CoverLetterFile
	}
	if config.CustomPrompts.UserPrompts.CoverLetterFile == "" {
		config.CustomPrompts.UserPrompts.CoverLetterFile = c.AI.CustomPrompts.UserPrompts.CoverLetterFile
	}

	return config
}

// GetQuestionsConfig returns the AI configuration for interview question generation with fallback to global config
func (c *Config) GetQuestionsConfig() OperationAIConfig {
	config := c.AI.Questions
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.InterviewQuestions == "" {
		config.CustomPrompts.SystemPrompts.InterviewQuestions = c.AI.CustomPrompts.SystemPrompts.InterviewQuestions
	}
	if config.CustomPrompts.UserPrompts.InterviewQuestions == "" {
		config.CustomPrompts.UserPrompts.InterviewQuestions = c.AI.CustomPrompts.UserPrompts.InterviewQuestions
	}
	if config.CustomPrompts.SystemPrompts.InterviewQuestionsFile == "" {
		config.CustomPrompts.SystemPrompts.InterviewQuestionsFile = c.AI.CustomPrompts.SystemPrompts.InterviewQuestionsFile
	}
	if config.CustomPrompts.UserPrompts.InterviewQuestionsFile == "" {
		config.CustomPrompts.UserPrompts.InterviewQuestionsFile = c.AI.CustomPrompts.UserPrompts.InterviewQuestionsFile
	}

	return config
}

// GetOptimizeConfig returns the AI configuration for resume optimization with fallback to global config
func (c *Config) GetOptimizeConfig() OperationAIConfig {
	config := c.AI.Optimize
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.OptimizeResume == "" {
		config.CustomPrompts.SystemPrompts.OptimizeResume = c.AI.CustomPrompts.SystemPrompts.OptimizeResume
	}
	if config.CustomPrompts.UserPrompts.OptimizeResume == "" {
		config.CustomPrompts.UserPrompts.OptimizeResume = c.AI.CustomPrompts.UserPrompts.OptimizeResume
	}
	if config.CustomPrompts.SystemPrompts.OptimizeResumeFile == "" {
		config.CustomPrompts.SystemPrompts.OptimizeResumeFile = c.AI.CustomPrompts.SystemPrompts.OptimizeResumeFile
	}
	if config.CustomPrompts.UserPrompts.OptimizeResumeFile == "" {
		config.CustomPrompts.UserPrompts.OptimizeResumeFile = c.AI.CustomPrompts.UserPrompts.OptimizeResumeFile
	}

	return config
}
