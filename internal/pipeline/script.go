package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"podforge/internal/ai"
	"podforge/internal/core"
)

// ScriptGenerator turns a refined prompt plus structured research into a
// timed, marked-up script. Failures propagate: a script the model could not
// produce is an error, never filler content.
type ScriptGenerator struct {
	chat    ai.ChatProvider
	timeout time.Duration
}

// NewScriptGenerator creates a generator over the chat capability.
func NewScriptGenerator(chat ai.ChatProvider) *ScriptGenerator {
	return &ScriptGenerator{
		chat:    chat,
		timeout: 120 * time.Second,
	}
}

// sectionSpec is one section of a structural template with its share of the
// total episode duration.
type sectionSpec struct {
	Type  string
	Share float64
}

// scriptTemplate is a named structural template selected by content angle.
type scriptTemplate struct {
	Name     string
	Guidance string
	Sections []sectionSpec
}

// structureTemplates maps content angle to a structural template. Section
// shares sum to 1.0 so the per-section budgets sum to the target duration.
var structureTemplates = map[string]scriptTemplate{
	"historical": {
		Name:     "Chronological Narrative",
		Guidance: "Move through time; anchor every beat in a date and place",
		Sections: []sectionSpec{
			{Type: "hook", Share: 0.08},
			{Type: "origins", Share: 0.22},
			{Type: "turning-points", Share: 0.30},
			{Type: "modern-era", Share: 0.25},
			{Type: "legacy", Share: 0.15},
		},
	},
	"technical": {
		Name:     "Problem-Solution Framework",
		Guidance: "State the problem concretely before any mechanism detail",
		Sections: []sectionSpec{
			{Type: "hook", Share: 0.08},
			{Type: "problem", Share: 0.20},
			{Type: "how-it-works", Share: 0.35},
			{Type: "limitations", Share: 0.22},
			{Type: "takeaways", Share: 0.15},
		},
	},
	"human-impact": {
		Name:     "Story-First Arc",
		Guidance: "Follow one person's experience, widening to the system around them",
		Sections: []sectionSpec{
			{Type: "opening-story", Share: 0.15},
			{Type: "the-system", Share: 0.25},
			{Type: "more-voices", Share: 0.25},
			{Type: "what-changes", Share: 0.20},
			{Type: "closing-story", Share: 0.15},
		},
	},
	"market-analysis": {
		Name:     "Market Deep Dive",
		Guidance: "Quantify every claim; name winners, losers and incentives",
		Sections: []sectionSpec{
			{Type: "hook", Share: 0.08},
			{Type: "landscape", Share: 0.22},
			{Type: "players", Share: 0.25},
			{Type: "economics", Share: 0.25},
			{Type: "outlook", Share: 0.20},
		},
	},
	"comparative": {
		Name:     "Side-by-Side Analysis",
		Guidance: "Alternate between subjects criterion by criterion, then synthesize",
		Sections: []sectionSpec{
			{Type: "hook", Share: 0.08},
			{Type: "contenders", Share: 0.20},
			{Type: "criteria", Share: 0.35},
			{Type: "verdict", Share: 0.22},
			{Type: "takeaways", Share: 0.15},
		},
	},
	"explanatory": {
		Name:     "Layered Explanation",
		Guidance: "Start from the listener's question and add one layer of depth at a time",
		Sections: []sectionSpec{
			{Type: "hook", Share: 0.08},
			{Type: "basics", Share: 0.25},
			{Type: "deeper-dive", Share: 0.30},
			{Type: "implications", Share: 0.22},
			{Type: "recap", Share: 0.15},
		},
	},
}

// templateForAngle returns the structural template for an angle, defaulting
// to the layered explanation.
func templateForAngle(angle string) scriptTemplate {
	if template, ok := structureTemplates[angle]; ok {
		return template
	}
	return structureTemplates["explanatory"]
}

// Generate produces the whole-project script.
func (g *ScriptGenerator) Generate(ctx context.Context, refinedPrompt string, research core.EnhancedResearchResult, analysis core.TopicAnalysis, durationMinutes int) (core.ScriptResult, error) {
	return g.generate(ctx, refinedPrompt, research, analysis, durationMinutes, nil, nil)
}

// GenerateEpisode produces one episode's script with cross-episode context.
func (g *ScriptGenerator) GenerateEpisode(ctx context.Context, refinedPrompt string, research core.EnhancedResearchResult, analysis core.TopicAnalysis, episode core.Episode, plan *core.EpisodePlanResult) (core.ScriptResult, error) {
	return g.generate(ctx, refinedPrompt, research, analysis, episode.EstimatedDuration, &episode, plan)
}

func (g *ScriptGenerator) generate(ctx context.Context, refinedPrompt string, research core.EnhancedResearchResult, analysis core.TopicAnalysis, durationMinutes int, episode *core.Episode, plan *core.EpisodePlanResult) (core.ScriptResult, error) {
	if strings.TrimSpace(refinedPrompt) == "" {
		return core.ScriptResult{}, newValidationError("script-generator", "prompt is required")
	}
	if g.chat == nil {
		return core.ScriptResult{}, newStageError("script-generator", "script generation is unavailable", nil)
	}
	if durationMinutes <= 0 {
		durationMinutes = 18
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	template := templateForAngle(analysis.Angle)
	response, err := g.chat.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: "You are a podcast script writer producing audio-ready narration.",
		Prompt:       g.buildScriptPrompt(refinedPrompt, research, template, durationMinutes, episode, plan),
		Temperature:  0.7,
		MaxTokens:    8192,
		JSONMode:     true,
	})
	if err != nil {
		return core.ScriptResult{}, newStageError("script-generator", "script generation failed", err)
	}

	var result core.ScriptResult
	if err := decodeModelJSON(response, &result); err != nil {
		return core.ScriptResult{}, newStageError("script-generator", "script response was not usable", err)
	}
	if strings.TrimSpace(result.Content) == "" {
		return core.ScriptResult{}, newStageError("script-generator", "script response contained no content", nil)
	}

	finalizeScript(&result, research, durationMinutes)
	return result, nil
}

// Suggestions asks for targeted improvement notes on an existing script.
// Failures propagate.
func (g *ScriptGenerator) Suggestions(ctx context.Context, scriptContent string) ([]string, error) {
	if strings.TrimSpace(scriptContent) == "" {
		return nil, newValidationError("script-generator", "script content is required")
	}
	if g.chat == nil {
		return nil, newStageError("script-generator", "script suggestions are unavailable", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.chat.Complete(ctx, ai.CompletionRequest{
		Prompt: fmt.Sprintf(`Review this podcast script and list 3-5 specific, actionable improvements.

Script:
%s

Respond with JSON only: {"suggestions": ["..."]}`, scriptContent),
		Temperature: 0.5,
		MaxTokens:   1024,
		JSONMode:    true,
	})
	if err != nil {
		return nil, newStageError("script-generator", "script suggestions failed", err)
	}

	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := decodeModelJSON(response, &parsed); err != nil {
		return nil, newStageError("script-generator", "suggestions response was not usable", err)
	}
	if len(parsed.Suggestions) == 0 {
		return nil, newStageError("script-generator", "suggestions response was empty", nil)
	}
	return parsed.Suggestions, nil
}

// buildScriptPrompt assembles the generation instruction: structural template
// with per-section second budgets, research material from the utilization
// plan, and episode context when generating within a series.
func (g *ScriptGenerator) buildScriptPrompt(refinedPrompt string, research core.EnhancedResearchResult, template scriptTemplate, durationMinutes int, episode *core.Episode, plan *core.EpisodePlanResult) string {
	totalSeconds := durationMinutes * 60
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Write a %d-minute podcast script.\n\nContent brief: %s\n\n", durationMinutes, refinedPrompt))

	if episode != nil {
		builder.WriteString(fmt.Sprintf("This is episode %d", episode.EpisodeNumber))
		if plan != nil {
			builder.WriteString(fmt.Sprintf(" of %d", plan.TotalEpisodes))
		}
		builder.WriteString(fmt.Sprintf(": %q.\n%s\nKey topics: %s\n", episode.Title, episode.Description, strings.Join(episode.KeyTopics, ", ")))
		if plan != nil && plan.TotalEpisodes > 1 {
			builder.WriteString("Reference the previous episode briefly when relevant and tease the next one in the closing.\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(fmt.Sprintf("Structure (%s — %s). Section budgets in seconds:\n", template.Name, template.Guidance))
	for _, section := range template.Sections {
		builder.WriteString(fmt.Sprintf("- %s: ~%d seconds\n", section.Type, int(math.Round(section.Share*float64(totalSeconds)))))
	}

	builder.WriteString("\nWork this research material in:\n")
	writePlanSlot := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		builder.WriteString(label + ":\n")
		for _, item := range items {
			builder.WriteString("- " + item + "\n")
		}
	}
	writePlanSlot("Intro", research.UtilizationPlan.Intro)
	writePlanSlot("Body", research.UtilizationPlan.Body)
	writePlanSlot("Conclusion", research.UtilizationPlan.Conclusion)
	writePlanSlot("Engagement hooks", research.UtilizationPlan.EngagementHooks)

	builder.WriteString(`
Formatting rules:
- Insert [pause] where the narrator should breathe, [emphasis] before stressed phrases, [transition] between sections.
- Narration only: no headers, no stage directions beyond the markers.

Respond with JSON only, exactly this shape:
{
  "content": "the full script text with inline markers",
  "sections": [{"type": "hook", "content": "that section's text", "duration": 90}]
}`)

	return builder.String()
}

// finalizeScript recomputes everything derivable from the content so no
// model arithmetic is trusted: analytics from the text itself, research
// utilization by matching material into the script, and total duration from
// the section budgets.
func finalizeScript(result *core.ScriptResult, research core.EnhancedResearchResult, durationMinutes int) {
	if len(result.Sections) == 0 {
		result.Sections = []core.ScriptSection{
			{Type: "full", Content: result.Content, Duration: durationMinutes * 60},
		}
	}

	total := 0
	for _, section := range result.Sections {
		total += section.Duration
	}
	if total <= 0 {
		total = durationMinutes * 60
	}
	result.TotalDuration = total

	result.Analytics = ComputeAnalytics(result.Content)
	result.ResearchUtilization = countUtilization(result.Content, research)
}

// ComputeAnalytics derives script analytics from the content alone.
// Words are whitespace-split fields; reading time assumes 200 wpm, speech
// time 150 wpm; pauses are literal [pause] marker occurrences.
func ComputeAnalytics(content string) core.ScriptAnalytics {
	words := len(strings.Fields(content))
	return core.ScriptAnalytics{
		WordCount:   words,
		ReadingTime: float64(words) / 200.0,
		SpeechTime:  float64(words) / 150.0 * 60.0,
		PauseCount:  strings.Count(content, "[pause]"),
	}
}

// countUtilization counts which research elements made it into the script,
// matched by a leading fragment of each element.
func countUtilization(content string, research core.EnhancedResearchResult) *core.ResearchUtilization {
	lower := strings.ToLower(content)

	countMatches := func(items []string) int {
		count := 0
		for _, item := range items {
			if containsFragment(lower, item) {
				count++
			}
		}
		return count
	}

	utilization := &core.ResearchUtilization{
		Narratives: countMatches(research.KeyNarratives),
		Quotes:     countMatches(research.CompellingQuotes),
		Concepts:   countMatches(research.TechnicalConcepts),
		Stories:    countMatches(research.HumanImpactStories),
	}
	for _, stat := range research.CriticalStats {
		if containsFragment(lower, stat.Fact) {
			utilization.Statistics++
		}
	}
	return utilization
}

// containsFragment reports whether the first few words of item appear in the
// lowercased content. Exact full-sentence matches are too strict against
// rephrased narration.
func containsFragment(lowerContent, item string) bool {
	words := strings.Fields(strings.ToLower(item))
	if len(words) == 0 {
		return false
	}
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Contains(lowerContent, strings.Join(words, " "))
}
