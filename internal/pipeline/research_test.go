package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"podforge/internal/core"
)

func TestResearchTimeoutFallsBackWithTopicStatistics(t *testing.T) {
	// Provider hangs past the orchestrator budget.
	provider := &mockResearch{delay: time.Second}
	orchestrator := NewResearchOrchestrator(provider, NewFallbackLibrary())
	orchestrator.stagger = 0
	orchestrator.timeout = 20 * time.Millisecond

	result, err := orchestrator.Research(context.Background(), "Explain how UPI works", core.TopicAnalysis{})
	if err != nil {
		t.Fatalf("Research() error = %v", err)
	}

	if len(result.KeyPoints) != 6 {
		t.Errorf("keyPoints length = %d, want fixed six-item list", len(result.KeyPoints))
	}
	if len(result.Outline) != 6 {
		t.Errorf("outline length = %d, want six items", len(result.Outline))
	}

	// The UPI keyword selects the payment-specific fallback statistics.
	found := false
	for _, stat := range result.Statistics {
		if strings.Contains(stat.Fact, "UPI") {
			found = true
		}
	}
	if !found {
		t.Errorf("statistics should carry UPI-specific fallback facts, got %+v", result.Statistics)
	}
}

func TestResearchSingleQueryFailureDoesNotFailBatch(t *testing.T) {
	provider := &mockResearch{
		respond: func(prompt string) (string, error) {
			if strings.Contains(prompt, "statistics") {
				return "", fmt.Errorf("rate limited")
			}
			return "- A substantial finding about the topic worth keeping around", nil
		},
	}
	orchestrator := NewResearchOrchestrator(provider, NewFallbackLibrary())
	orchestrator.stagger = 0

	result, err := orchestrator.Research(context.Background(), "The rise of container shipping", core.TopicAnalysis{})
	if err != nil {
		t.Fatalf("Research() error = %v", err)
	}

	// Four of five categories succeed; the failed one is simply empty.
	if len(result.Sources) != 4 {
		t.Errorf("sources = %d, want 4 (failed category omitted)", len(result.Sources))
	}
	if len(result.Statistics) != 0 {
		t.Errorf("statistics = %d, want 0 (statistics query failed)", len(result.Statistics))
	}
	if len(result.KeyPoints) == 0 {
		t.Error("surviving categories should contribute key points")
	}
}

func TestResearchDispatchesAllCategories(t *testing.T) {
	provider := &mockResearch{}
	orchestrator := NewResearchOrchestrator(provider, NewFallbackLibrary())
	orchestrator.stagger = 0

	_, err := orchestrator.Research(context.Background(), "A topic", core.TopicAnalysis{})
	if err != nil {
		t.Fatalf("Research() error = %v", err)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.queries) != 5 {
		t.Errorf("dispatched %d queries, want 5", len(provider.queries))
	}
}

func TestResearchEmptyPromptIsValidationError(t *testing.T) {
	orchestrator := NewResearchOrchestrator(&mockResearch{}, NewFallbackLibrary())

	_, err := orchestrator.Research(context.Background(), "", core.TopicAnalysis{})

	stageErr, ok := err.(*StageError)
	if !ok || !stageErr.Validation {
		t.Fatalf("error = %v, want validation StageError", err)
	}
}

func TestResearchAllQueriesFailingUsesFallback(t *testing.T) {
	provider := &mockResearch{
		respond: func(string) (string, error) { return "", fmt.Errorf("provider outage") },
	}
	orchestrator := NewResearchOrchestrator(provider, NewFallbackLibrary())
	orchestrator.stagger = 0

	result, err := orchestrator.Research(context.Background(), "anything", core.TopicAnalysis{})
	if err != nil {
		t.Fatalf("Research() error = %v", err)
	}
	if len(result.KeyPoints) != 6 {
		t.Errorf("keyPoints = %d, want the six-item fallback", len(result.KeyPoints))
	}
}
