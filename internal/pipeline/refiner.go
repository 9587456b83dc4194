package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"podforge/internal/ai"
	"podforge/internal/core"
	"podforge/internal/logger"
)

// PromptRefiner turns a raw topic plus its analysis and expert persona into
// a polished content brief. Upstream failures are absorbed: the refiner
// races the chat call against a short fallback window and returns the
// deterministic brief when the model is late or unusable. Fallback and
// success paths are interchangeable to downstream consumers.
type PromptRefiner struct {
	chat      ai.ChatProvider
	fallbacks *FallbackLibrary
	timeout   time.Duration
}

// NewPromptRefiner creates a prompt refiner with the default 3s race window.
func NewPromptRefiner(chat ai.ChatProvider, fallbacks *FallbackLibrary) *PromptRefiner {
	return &PromptRefiner{
		chat:      chat,
		fallbacks: fallbacks,
		timeout:   3 * time.Second,
	}
}

// openingStrategies selects the opening approach by content angle.
var openingStrategies = map[string]string{
	"historical":      "Open at a pivotal moment in the story, then rewind to how we got there",
	"technical":       "Open with the concrete problem this technology solves for a real user",
	"human-impact":    "Open with one person's experience before widening to the system",
	"market-analysis": "Open with the surprising number that reframes the market",
	"comparative":     "Open with the tension between the two approaches being compared",
	"explanatory":     "Open with the question a curious listener would actually ask",
}

// contentArchitectures selects the body structure by scope.
var contentArchitectures = map[string]string{
	"single-concept": "Go deep on one concept: definition, mechanism, examples, edge cases, implications",
	"multi-faceted":  "Cover 3-4 distinct facets, each with its own mini-arc, linked by explicit transitions",
	"comparative":    "Alternate between the compared subjects criterion by criterion, then synthesize",
}

// scopeDurations maps scope to the suggested episode duration in minutes.
// Duration is a pure function of scope, never taken from the model.
var scopeDurations = map[string]int{
	"single-concept": 15,
	"multi-faceted":  18,
	"comparative":    20,
}

// DurationForScope returns the suggested duration in minutes for a scope.
func DurationForScope(scope string) int {
	if minutes, ok := scopeDurations[scope]; ok {
		return minutes
	}
	return 18
}

// Refine produces the content brief. Only validation errors are returned;
// every upstream failure resolves to the deterministic fallback.
func (r *PromptRefiner) Refine(ctx context.Context, rawPrompt string, analysis core.TopicAnalysis, expertise core.DomainExpertise) (core.PromptRefinementResult, error) {
	if strings.TrimSpace(rawPrompt) == "" {
		return core.PromptRefinementResult{}, newValidationError("prompt-refiner", "prompt is required")
	}

	if r.chat == nil {
		return r.fallbackResult(rawPrompt, analysis), nil
	}

	type outcome struct {
		result core.PromptRefinementResult
		err    error
	}
	resultCh := make(chan outcome, 1)

	// The in-flight call is abandoned on timeout, not cancelled: the timer
	// decides the race and a late result is discarded.
	go func() {
		response, err := r.chat.Complete(ctx, ai.CompletionRequest{
			SystemPrompt: fmt.Sprintf("You are a %s. %s", expertise.ExpertTitle, expertise.Description),
			Prompt:       r.buildRefinementPrompt(rawPrompt, analysis, expertise),
			Temperature:  0.4,
			MaxTokens:    2048,
			JSONMode:     true,
		})
		if err != nil {
			resultCh <- outcome{err: err}
			return
		}

		var parsed core.PromptRefinementResult
		if err := decodeModelJSON(response, &parsed); err != nil {
			resultCh <- outcome{err: err}
			return
		}
		resultCh <- outcome{result: parsed}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case out := <-resultCh:
		if out.err != nil {
			logger.Warn("Prompt refinement failed, using fallback", "error", out.err.Error())
			return r.fallbackResult(rawPrompt, analysis), nil
		}
		result := out.result
		if strings.TrimSpace(result.RefinedPrompt) == "" {
			result.RefinedPrompt = rawPrompt
		}
		// Scope decides duration regardless of what the model suggested.
		result.SuggestedDuration = DurationForScope(analysis.Scope)
		if result.TargetAudience == "" {
			result.TargetAudience = analysis.Audience + " audience"
		}
		return result, nil
	case <-timer.C:
		logger.Warn("Prompt refinement timed out, using fallback", "timeout", r.timeout.String())
		return r.fallbackResult(rawPrompt, analysis), nil
	case <-ctx.Done():
		return r.fallbackResult(rawPrompt, analysis), nil
	}
}

// fallbackResult builds the deterministic brief, with duration still derived
// from scope when an analysis is available.
func (r *PromptRefiner) fallbackResult(rawPrompt string, analysis core.TopicAnalysis) core.PromptRefinementResult {
	result := r.fallbacks.RefinementFallback(rawPrompt)
	if analysis.Scope != "" {
		result.SuggestedDuration = DurationForScope(analysis.Scope)
	}
	return result
}

// buildRefinementPrompt assembles the richly-templated refinement
// instruction from the analysis and persona.
func (r *PromptRefiner) buildRefinementPrompt(rawPrompt string, analysis core.TopicAnalysis, expertise core.DomainExpertise) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Refine this podcast topic into a production-ready content brief.\n\nRaw topic: %q\n\n", rawPrompt))
	builder.WriteString(fmt.Sprintf("Topic profile: domain=%s complexity=%s audience=%s angle=%s scope=%s\n", analysis.Domain, analysis.Complexity, analysis.Audience, analysis.Angle, analysis.Scope))

	if len(analysis.KeyElements) > 0 {
		builder.WriteString("Key elements to cover: " + strings.Join(analysis.KeyElements, ", ") + "\n")
	}

	builder.WriteString("\nExpert requirements:\n")
	for _, requirement := range expertise.Requirements {
		builder.WriteString("- " + requirement + "\n")
	}
	builder.WriteString("Audience adaptation: " + expertise.AudienceGuidance + "\n")

	if strategy, ok := openingStrategies[analysis.Angle]; ok {
		builder.WriteString("Opening strategy: " + strategy + "\n")
	}
	if architecture, ok := contentArchitectures[analysis.Scope]; ok {
		builder.WriteString("Content architecture: " + architecture + "\n")
	}

	builder.WriteString(`
Respond with JSON only, exactly this shape:
{
  "refinedPrompt": "the polished content brief, 2-4 sentences",
  "focusAreas": ["3-5 focus areas"],
  "targetAudience": "one-line audience description",
  "contentStrategy": "one-line strategy note",
  "researchRequirements": ["2-4 things research must establish"]
}`)

	return builder.String()
}
