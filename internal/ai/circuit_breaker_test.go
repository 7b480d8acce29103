package ai

import (
	"errors"
	"testing"
	"time"

	"jobpilot/internal/config"
)

func breakerConfig(cb config.CircuitBreakerConfig) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider:       ProviderOpenAI,
		CircuitBreaker: cb,
	}
}

func TestCircuitBreakerDisabledByDefault(t *testing.T) {
	cfg := breakerConfig(config.CircuitBreakerConfig{})

	cb := NewAICircuitBreaker(OperationParse, cfg, nil)
	if cb != nil {
		t.Fatal("circuit breaker should be nil when disabled")
	}

	// A nil breaker executes the function directly
	result, err := cb.Execute(func() (completion, error) {
		return completion{Text: "ok"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "ok" {
		t.Errorf("expected passthrough result, got %q", result.Text)
	}

	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
	stats := cb.GetStats()
	if enabled, _ := stats["enabled"].(bool); enabled {
		t.Error("nil breaker stats should report enabled=false")
	}
}

func TestCircuitBreakerEnabled(t *testing.T) {
	cfg := breakerConfig(config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	})

	cb := NewAICircuitBreaker(OperationMatch, cfg, nil)
	if cb == nil {
		t.Fatal("circuit breaker should not be nil when enabled")
	}

	stats := cb.GetStats()
	if name, _ := stats["name"].(string); name != "AI-match" {
		t.Errorf("expected breaker name AI-match, got %q", name)
	}
	if state, _ := stats["state"].(string); state != "closed" {
		t.Errorf("expected initial state closed, got %q", state)
	}
	if enabled, _ := stats["enabled"].(bool); !enabled {
		t.Error("expected enabled=true")
	}
	if !cb.IsHealthy() {
		t.Error("breaker should be healthy initially")
	}
}

func TestCircuitBreakerIndependentInstances(t *testing.T) {
	cbCfg := config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}

	operations := []string{OperationParse, OperationMatch, OperationCover, OperationQuestions, OperationOptimize}
	breakers := make(map[string]*AICircuitBreaker, len(operations))
	for _, op := range operations {
		breakers[op] = NewAICircuitBreaker(op, breakerConfig(cbCfg), nil)
	}

	seen := make(map[string]bool)
	for op, cb := range breakers {
		name, _ := cb.GetStats()["name"].(string)
		if name != "AI-"+op {
			t.Errorf("operation %s: expected breaker name AI-%s, got %q", op, op, name)
		}
		if seen[name] {
			t.Errorf("duplicate breaker name %q", name)
		}
		seen[name] = true
		if !cb.IsHealthy() {
			t.Errorf("operation %s: breaker should be healthy initially", op)
		}
	}
}

func TestCircuitBreakerPassesThroughErrors(t *testing.T) {
	cfg := breakerConfig(config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      100, // high enough that a single failure never trips it
		FailureThreshold: 0.9,
	})

	cb := NewAICircuitBreaker(OperationParse, cfg, nil)

	wantErr := errors.New("provider failed")
	_, err := cb.Execute(func() (completion, error) {
		return completion{}, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if !cb.IsHealthy() {
		t.Error("a single failure below the threshold should not open the breaker")
	}
}
