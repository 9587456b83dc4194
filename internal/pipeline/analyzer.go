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

// TopicAnalyzer classifies a raw user topic into a structured profile. It
// always succeeds: any upstream failure is absorbed and replaced by the
// deterministic keyword classifier, so callers never see an error.
type TopicAnalyzer struct {
	chat    ai.ChatProvider
	timeout time.Duration
}

// NewTopicAnalyzer creates a topic analyzer over the chat capability.
func NewTopicAnalyzer(chat ai.ChatProvider) *TopicAnalyzer {
	return &TopicAnalyzer{
		chat:    chat,
		timeout: 15 * time.Second,
	}
}

const topicAnalysisPrompt = `Analyze the following podcast topic and classify it.

Topic: %q

Respond with JSON only, exactly this shape:
{
  "domain": "one of: fintech, healthcare, technology, business, education, science, history, general",
  "complexity": "one of: beginner, intermediate, expert",
  "audience": "one of: general, technical, business, academic, student",
  "angle": "one of: historical, technical, human-impact, market-analysis, comparative, explanatory",
  "scope": "one of: single-concept, multi-faceted, comparative",
  "keyElements": ["3-5 concrete elements the topic covers"],
  "contentGoals": ["2-4 things an episode on this should achieve"],
  "expertiseLevel": "short description of the expertise the content needs"
}`

// Analyze produces a TopicAnalysis for the raw prompt. Errors are logged and
// replaced with the keyword fallback, never propagated.
func (a *TopicAnalyzer) Analyze(ctx context.Context, rawPrompt string) core.TopicAnalysis {
	if a.chat != nil {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		response, err := a.chat.Complete(ctx, ai.CompletionRequest{
			Prompt:      fmt.Sprintf(topicAnalysisPrompt, rawPrompt),
			Temperature: 0.3,
			MaxTokens:   1024,
			JSONMode:    true,
		})
		if err == nil {
			var analysis core.TopicAnalysis
			if parseErr := decodeModelJSON(response, &analysis); parseErr == nil && analysis.Domain != "" {
				normalizeAnalysis(&analysis)
				return analysis
			} else {
				logger.Warn("Topic analysis response unusable, using keyword fallback", "parse_error", parseErr)
			}
		} else {
			logger.Warn("Topic analysis call failed, using keyword fallback", "error", err.Error())
		}
	}

	return keywordAnalysis(rawPrompt)
}

// keywordAnalysis is the deterministic classifier used when the AI call
// fails. Angle and scope are fixed in this path.
func keywordAnalysis(rawPrompt string) core.TopicAnalysis {
	lower := strings.ToLower(rawPrompt)

	domain := "general"
	switch {
	case containsAny(lower, "payment", "upi", "banking", "fintech", "money", "finance"):
		domain = "fintech"
	case containsAny(lower, "health", "medical", "patient", "disease", "clinical"):
		domain = "healthcare"
	case containsAny(lower, "tech", "software", "ai", "computer", "internet", "digital"):
		domain = "technology"
	case containsAny(lower, "education", "learning", "school", "teaching", "student"):
		domain = "education"
	case containsAny(lower, "business", "market", "startup", "company", "economy"):
		domain = "business"
	}

	complexity := "intermediate"
	switch {
	case containsAny(lower, "basic", "beginner", "introduction", "simple", "what is"):
		complexity = "beginner"
	case containsAny(lower, "advanced", "deep dive", "expert", "technical details"):
		complexity = "expert"
	}

	audience := "general"
	switch {
	case containsAny(lower, "business", "enterprise", "market"):
		audience = "business"
	case containsAny(lower, "technical", "engineer", "developer", "architecture"):
		audience = "technical"
	case containsAny(lower, "student", "exam", "course"):
		audience = "student"
	}

	return core.TopicAnalysis{
		Domain:         domain,
		Complexity:     complexity,
		Audience:       audience,
		Angle:          "explanatory",
		Scope:          "multi-faceted",
		KeyElements:    extractKeyElements(rawPrompt),
		ContentGoals:   []string{"Explain the topic clearly", "Keep listeners engaged throughout", "Leave listeners with practical takeaways"},
		ExpertiseLevel: complexity,
	}
}

// normalizeAnalysis fills gaps a model response may leave so downstream
// stages always see a complete profile.
func normalizeAnalysis(analysis *core.TopicAnalysis) {
	if analysis.Complexity == "" {
		analysis.Complexity = "intermediate"
	}
	if analysis.Audience == "" {
		analysis.Audience = "general"
	}
	if analysis.Angle == "" {
		analysis.Angle = "explanatory"
	}
	if analysis.Scope == "" {
		analysis.Scope = "multi-faceted"
	}
	if analysis.ExpertiseLevel == "" {
		analysis.ExpertiseLevel = analysis.Complexity
	}
}

// extractKeyElements pulls the significant words from the prompt as a
// best-effort element list for the fallback path.
func extractKeyElements(rawPrompt string) []string {
	stopwords := map[string]bool{
		"the": true, "a": true, "an": true, "of": true, "and": true, "or": true,
		"how": true, "why": true, "what": true, "is": true, "are": true, "to": true,
		"in": true, "on": true, "for": true, "about": true, "explain": true,
		"works": true, "work": true, "does": true, "podcast": true,
	}

	var elements []string
	for _, word := range strings.Fields(rawPrompt) {
		cleaned := strings.Trim(strings.ToLower(word), ".,!?\"'")
		if len(cleaned) < 3 || stopwords[cleaned] {
			continue
		}
		elements = append(elements, cleaned)
		if len(elements) == 5 {
			break
		}
	}
	if len(elements) == 0 {
		elements = []string{strings.TrimSpace(rawPrompt)}
	}
	return elements
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
