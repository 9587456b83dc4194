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

// researchCategory identifies one of the parallel research queries.
type researchCategory string

const (
	categoryTimeline   researchCategory = "timeline"
	categoryStatistics researchCategory = "statistics"
	categoryStories    researchCategory = "stories"
	categoryConcepts   researchCategory = "concepts"
	categoryTrends     researchCategory = "trends"
)

// researchCategories is the dispatch order. The stagger delay between
// dispatches follows this order.
var researchCategories = []researchCategory{
	categoryTimeline,
	categoryStatistics,
	categoryStories,
	categoryConcepts,
	categoryTrends,
}

// categoryPrompts templates the per-category research question.
var categoryPrompts = map[researchCategory]string{
	categoryTimeline:   "Build a timeline of the key events and milestones for: %s. List each as 'YEAR: what happened'.",
	categoryStatistics: "Find current, citable statistics and hard numbers about: %s. For each, state the figure and its source.",
	categoryStories:    "Find specific human stories and real-world anecdotes that illustrate: %s. Name the people and places involved.",
	categoryConcepts:   "Explain the essential technical concepts behind: %s. One concept per line, defined plainly.",
	categoryTrends:     "Summarize current trends and likely future developments for: %s. Distinguish established trends from speculation.",
}

// ResearchOrchestrator issues the category queries against the research
// capability in parallel with staggered dispatch, and aggregates whatever
// comes back. Individual query failures yield an empty category; only the
// outer timeout triggers the topic-keyed fallback. Callers never see an
// error beyond input validation.
type ResearchOrchestrator struct {
	provider  ai.ResearchProvider
	fallbacks *FallbackLibrary
	stagger   time.Duration
	timeout   time.Duration
	maxActive int
}

// NewResearchOrchestrator creates an orchestrator with the default 1s
// stagger and 6-minute outer budget.
func NewResearchOrchestrator(provider ai.ResearchProvider, fallbacks *FallbackLibrary) *ResearchOrchestrator {
	return &ResearchOrchestrator{
		provider:  provider,
		fallbacks: fallbacks,
		stagger:   time.Second,
		timeout:   6 * time.Minute,
		maxActive: len(researchCategories),
	}
}

// categoryResult is one settled query outcome.
type categoryResult struct {
	category researchCategory
	text     string
	err      error
}

// Research runs the full research batch for a refined prompt. The result is
// always usable: a full timeout produces the deterministic fallback, and
// per-category failures simply leave that category empty.
func (o *ResearchOrchestrator) Research(ctx context.Context, refinedPrompt string, analysis core.TopicAnalysis) (core.ResearchResult, error) {
	if strings.TrimSpace(refinedPrompt) == "" {
		return core.ResearchResult{}, newValidationError("research-orchestrator", "refined prompt is required")
	}

	if o.provider == nil {
		return o.fallbacks.ResearchFallback(refinedPrompt), nil
	}

	categories := researchCategories
	if o.maxActive > 0 && o.maxActive < len(categories) {
		categories = categories[:o.maxActive]
	}

	resultCh := make(chan categoryResult, len(categories))

	// Staggered dispatch: each query starts one stagger interval after the
	// previous one to stay under the provider's rate limits. Queries run
	// with the parent context so an orchestrator timeout abandons them
	// rather than cancelling mid-flight.
	for i, category := range categories {
		go func(delay time.Duration, category researchCategory) {
			if delay > 0 {
				time.Sleep(delay)
			}
			prompt := fmt.Sprintf(categoryPrompts[category], refinedPrompt)
			text, err := o.provider.Query(ctx, prompt)
			resultCh <- categoryResult{category: category, text: text, err: err}
		}(time.Duration(i)*o.stagger, category)
	}

	// All-settled collection: a failing query never cancels its siblings.
	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	settled := make(map[researchCategory]string, len(categories))
	for remaining := len(categories); remaining > 0; remaining-- {
		select {
		case result := <-resultCh:
			if result.err != nil {
				logger.Warn("Research query failed, leaving category empty",
					"category", string(result.category), "error", result.err.Error())
				settled[result.category] = ""
				continue
			}
			settled[result.category] = result.text
		case <-timer.C:
			logger.Warn("Research batch timed out, using topic fallback", "timeout", o.timeout.String())
			return o.fallbacks.ResearchFallback(refinedPrompt), nil
		case <-ctx.Done():
			return o.fallbacks.ResearchFallback(refinedPrompt), nil
		}
	}

	result := o.aggregate(refinedPrompt, analysis, settled)
	if len(result.KeyPoints) == 0 && len(result.Statistics) == 0 {
		// Every category came back empty; the fallback is more useful than
		// a hollow result.
		return o.fallbacks.ResearchFallback(refinedPrompt), nil
	}
	return result, nil
}

// aggregate converts the settled category texts into a raw ResearchResult.
func (o *ResearchOrchestrator) aggregate(refinedPrompt string, analysis core.TopicAnalysis, settled map[researchCategory]string) core.ResearchResult {
	result := core.ResearchResult{}

	for _, category := range researchCategories {
		text, ok := settled[category]
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}

		result.Sources = append(result.Sources, core.ResearchSource{
			Title:       fmt.Sprintf("%s research", capitalize(string(category))),
			URL:         "",
			Summary:     truncate(text, 280),
			FullContent: text,
		})

		for _, line := range bulletLines(text) {
			switch category {
			case categoryStatistics:
				result.Statistics = append(result.Statistics, core.Statistic{
					Fact:   line,
					Source: "Research: " + string(category),
				})
			default:
				result.KeyPoints = append(result.KeyPoints, line)
			}
		}
	}

	result.Outline = buildOutline(analysis)
	return result
}

// buildOutline derives a standard episode outline, seeded with the analyzed
// key elements when present.
func buildOutline(analysis core.TopicAnalysis) []string {
	outline := []string{"Opening hook and framing", "Background and context"}
	for _, element := range analysis.KeyElements {
		if len(outline) == 5 {
			break
		}
		outline = append(outline, "Exploring: "+element)
	}
	for len(outline) < 5 {
		outline = append(outline, "Deep dive and examples")
	}
	return append(outline, "Outlook and closing thoughts")
}

// bulletLines extracts the meaningful lines of a research response,
// stripping list markers and numbering.
func bulletLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		if len(line) > 2 && line[1] == '.' && line[0] >= '1' && line[0] <= '9' {
			line = strings.TrimSpace(line[2:])
		}
		line = strings.Trim(line, "`")
		if len(line) < 10 || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// capitalize upper-cases the first byte of an ASCII word.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncate shortens s to at most n bytes on a word boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
