package config

import (
	"testing"
	"time"
)

func globalAIConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:         "openai",
			Timeout:          30 * time.Second,
			APIKey:           "global-key",
			Temperature:      0.7,
			MaxTokens:        2000,
			UseSystemPrompts: true,
			Endpoints:        map[string]string{"openai": "https://api.openai.com/v1"},
			Models:           map[string]string{"openai": "gpt-4"},
		},
	}
}

func TestOperationDefaultsFallBackToGlobal(t *testing.T) {
	cfg := globalAIConfig()

	opCfg := cfg.GetParseConfig()

	if opCfg.Provider != "openai" {
		t.Errorf("expected global provider, got %q", opCfg.Provider)
	}
	if opCfg.APIKey != "global-key" {
		t.Errorf("expected global API key, got %q", opCfg.APIKey)
	}
	if opCfg.Timeout == nil || *opCfg.Timeout != 30*time.Second {
		t.Errorf("expected global timeout, got %v", opCfg.Timeout)
	}
	if opCfg.Temperature == nil || *opCfg.Temperature != 0.7 {
		t.Errorf("expected global temperature, got %v", opCfg.Temperature)
	}
	if opCfg.MaxTokens == nil || *opCfg.MaxTokens != 2000 {
		t.Errorf("expected global maxTokens, got %v", opCfg.MaxTokens)
	}
	if opCfg.UseSystemPrompts == nil || !*opCfg.UseSystemPrompts {
		t.Errorf("expected global useSystemPrompts, got %v", opCfg.UseSystemPrompts)
	}
	if opCfg.Endpoints["openai"] != "https://api.openai.com/v1" {
		t.Errorf("expected global endpoints, got %v", opCfg.Endpoints)
	}
	if opCfg.Models["openai"] != "gpt-4" {
		t.Errorf("expected global models, got %v", opCfg.Models)
	}
}

func TestOperationOverridesWinOverGlobal(t *testing.T) {
	cfg := globalAIConfig()

	opTimeout := 5 * time.Second
	opTemp := float32(0.2)
	opTokens := 512
	noSystem := false
	cfg.AI.Match = OperationAIConfig{
		Provider:         "deepseek",
		Timeout:          &opTimeout,
		APIKey:           "match-key",
		Temperature:      &opTemp,
		MaxTokens:        &opTokens,
		UseSystemPrompts: &noSystem,
		Endpoints:        map[string]string{"deepseek": "https://api.deepseek.com"},
	}

	opCfg := cfg.GetMatchConfig()

	if opCfg.Provider != "deepseek" {
		t.Errorf("expected operation provider, got %q", opCfg.Provider)
	}
	if opCfg.APIKey != "match-key" {
		t.Errorf("expected operation API key, got %q", opCfg.APIKey)
	}
	if *opCfg.Timeout != opTimeout {
		t.Errorf("expected operation timeout, got %v", *opCfg.Timeout)
	}
	if *opCfg.Temperature != opTemp {
		t.Errorf("expected operation temperature, got %v", *opCfg.Temperature)
	}
	if *opCfg.MaxTokens != opTokens {
		t.Errorf("expected operation maxTokens, got %v", *opCfg.MaxTokens)
	}
	// Explicit false must not be clobbered by the global true
	if *opCfg.UseSystemPrompts {
		t.Error("explicit useSystemPrompts=false should survive defaulting")
	}
	if opCfg.Endpoints["deepseek"] != "https://api.deepseek.com" {
		t.Errorf("expected operation endpoints, got %v", opCfg.Endpoints)
	}
}

func TestCollapseErrorsIsGlobalOnly(t *testing.T) {
	cfg := globalAIConfig()
	cfg.AI.CollapseErrors = true

	for name, get := range map[string]func() OperationAIConfig{
		"parse":       cfg.GetParseConfig,
		"match":       cfg.GetMatchConfig,
		"coverLetter": cfg.GetCoverLetterConfig,
		"questions":   cfg.GetQuestionsConfig,
		"optimize":    cfg.GetOptimizeConfig,
	} {
		if !get().CollapseErrors {
			t.Errorf("%s: expected CollapseErrors propagated from global config", name)
		}
	}
}

func TestOperationPromptFallback(t *testing.T) {
	cfg := globalAIConfig()
	cfg.AI.CustomPrompts.SystemPrompts.CoverLetter = "global cover system prompt"
	cfg.AI.CustomPrompts.UserPrompts.CoverLetter = "global cover user prompt"

	opCfg := cfg.GetCoverLetterConfig()
	if opCfg.CustomPrompts.SystemPrompts.CoverLetter != "global cover system prompt" {
		t.Errorf("expected global system prompt fallback, got %q", opCfg.CustomPrompts.SystemPrompts.CoverLetter)
	}
	if opCfg.CustomPrompts.UserPrompts.CoverLetter != "global cover user prompt" {
		t.Errorf("expected global user prompt fallback, got %q", opCfg.CustomPrompts.UserPrompts.CoverLetter)
	}

	// An operation-level prompt is not overwritten by the global one
	cfg.AI.Cover.CustomPrompts.SystemPrompts.CoverLetter = "operation cover system prompt"
	opCfg = cfg.GetCoverLetterConfig()
	if opCfg.CustomPrompts.SystemPrompts.CoverLetter != "operation cover system prompt" {
		t.Errorf("expected operation system prompt to win, got %q", opCfg.CustomPrompts.SystemPrompts.CoverLetter)
	}
}

func TestOperationConfigsAreIndependentCopies(t *testing.T) {
	cfg := globalAIConfig()

	first := cfg.GetParseConfig()
	first.Provider = "gemini"
	first.APIKey = "mutated"

	second := cfg.GetParseConfig()
	if second.Provider != "openai" || second.APIKey != "global-key" {
		t.Error("mutating a returned config must not affect subsequent calls")
	}
}
