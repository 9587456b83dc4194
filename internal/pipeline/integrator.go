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

// ResearchIntegrator structures raw research into the nine typed categories
// the script generator draws from, then derives a utilization plan and
// richness scores. It absorbs failures: when the model response is missing
// or unusable, the raw material is redistributed by position instead, so
// the output always carries the same total number of elements as the input.
type ResearchIntegrator struct {
	chat    ai.ChatProvider
	timeout time.Duration
}

// NewResearchIntegrator creates an integrator over the chat capability.
func NewResearchIntegrator(chat ai.ChatProvider) *ResearchIntegrator {
	return &ResearchIntegrator{
		chat:    chat,
		timeout: 45 * time.Second,
	}
}

const integrationPrompt = `You are organizing podcast research material. Classify every item below
into exactly one category. Do not invent items and do not drop items.

Key points:
%s

Statistics:
%s

Respond with JSON only, exactly this shape:
{
  "keyNarratives": ["story arcs the episode can be built around"],
  "criticalStats": [{"fact": "...", "source": "..."}],
  "compellingQuotes": ["direct quotes worth reading on air"],
  "technicalConcepts": ["concepts that need explanation"],
  "humanImpactStories": ["stories about specific people"],
  "timelineEvents": [{"year": "...", "event": "..."}],
  "futureImplications": ["what this means going forward"],
  "surprisingFacts": ["counterintuitive or little-known facts"],
  "expertInsights": [{"expert": "...", "insight": "..."}]
}`

// Integrate produces the enhanced research result. It never returns an
// error: extraction failures fall back to positional redistribution of the
// raw material.
func (i *ResearchIntegrator) Integrate(ctx context.Context, research core.ResearchResult, analysis core.TopicAnalysis) core.EnhancedResearchResult {
	enhanced := i.extract(ctx, research)
	enhanced.ResearchResult = research
	enhanced.UtilizationPlan = buildUtilizationPlan(&enhanced)
	enhanced.ContentRichness = scoreRichness(&enhanced)
	return enhanced
}

// extract asks the model to classify the raw material, falling back to the
// positional split on any failure.
func (i *ResearchIntegrator) extract(ctx context.Context, research core.ResearchResult) core.EnhancedResearchResult {
	if i.chat == nil {
		return positionalSplit(research)
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	response, err := i.chat.Complete(ctx, ai.CompletionRequest{
		Prompt:      fmt.Sprintf(integrationPrompt, itemList(research.KeyPoints), statList(research.Statistics)),
		Temperature: 0.2,
		MaxTokens:   4096,
		JSONMode:    true,
	})
	if err != nil {
		logger.Warn("Research integration call failed, using positional split", "error", err.Error())
		return positionalSplit(research)
	}

	var enhanced core.EnhancedResearchResult
	if err := decodeModelJSON(response, &enhanced); err != nil {
		logger.Warn("Research integration response unusable, using positional split", "parse_error", err.Error())
		return positionalSplit(research)
	}
	if categoryCount(&enhanced) == 0 {
		return positionalSplit(research)
	}
	return enhanced
}

// positionalSplit redistributes raw research into categories by position:
// the leading key points become narratives, the trailing ones future
// implications, and the middle alternates between technical concepts and
// surprising facts. Statistics map to critical stats unchanged. The total
// element count is preserved.
func positionalSplit(research core.ResearchResult) core.EnhancedResearchResult {
	var enhanced core.EnhancedResearchResult

	points := research.KeyPoints
	narrativeEnd := 3
	if narrativeEnd > len(points) {
		narrativeEnd = len(points)
	}
	enhanced.KeyNarratives = append(enhanced.KeyNarratives, points[:narrativeEnd]...)

	implicationStart := len(points) - 2
	if implicationStart < narrativeEnd {
		implicationStart = len(points)
	}
	enhanced.FutureImplications = append(enhanced.FutureImplications, points[implicationStart:]...)

	for idx, point := range points[narrativeEnd:implicationStart] {
		if idx%2 == 0 {
			enhanced.TechnicalConcepts = append(enhanced.TechnicalConcepts, point)
		} else {
			enhanced.SurprisingFacts = append(enhanced.SurprisingFacts, point)
		}
	}

	enhanced.CriticalStats = append(enhanced.CriticalStats, research.Statistics...)
	return enhanced
}

// buildUtilizationPlan deterministically assigns categorized elements to
// script slots. The same input always yields the same plan.
func buildUtilizationPlan(enhanced *core.EnhancedResearchResult) core.UtilizationPlan {
	plan := core.UtilizationPlan{}

	if len(enhanced.SurprisingFacts) > 0 {
		plan.Intro = append(plan.Intro, "Open with: "+enhanced.SurprisingFacts[0])
	}
	if len(enhanced.KeyNarratives) > 0 {
		plan.Intro = append(plan.Intro, "Frame around: "+enhanced.KeyNarratives[0])
	}

	for _, narrative := range enhanced.KeyNarratives {
		plan.Body = append(plan.Body, "Develop narrative: "+narrative)
	}
	for _, stat := range enhanced.CriticalStats {
		plan.Body = append(plan.Body, "Cite: "+stat.Fact)
	}
	for _, concept := range enhanced.TechnicalConcepts {
		plan.Body = append(plan.Body, "Explain: "+concept)
	}
	for _, story := range enhanced.HumanImpactStories {
		plan.Body = append(plan.Body, "Tell: "+story)
	}

	for _, implication := range enhanced.FutureImplications {
		plan.Conclusion = append(plan.Conclusion, "Look ahead: "+implication)
	}
	if len(plan.Conclusion) == 0 && len(enhanced.KeyNarratives) > 0 {
		plan.Conclusion = append(plan.Conclusion, "Return to: "+enhanced.KeyNarratives[0])
	}

	for _, fact := range enhanced.SurprisingFacts {
		plan.EngagementHooks = append(plan.EngagementHooks, fact)
	}
	for _, quote := range enhanced.CompellingQuotes {
		plan.EngagementHooks = append(plan.EngagementHooks, "Quote: "+quote)
	}

	return plan
}

// scoreRichness computes the three weighted richness scores plus the total
// data point count. Weights reflect how much each element type contributes
// to the scored quality; every score is clamped to 10.
func scoreRichness(enhanced *core.EnhancedResearchResult) core.ContentRichness {
	narratives := float64(len(enhanced.KeyNarratives))
	stats := float64(len(enhanced.CriticalStats))
	quotes := float64(len(enhanced.CompellingQuotes))
	concepts := float64(len(enhanced.TechnicalConcepts))
	stories := float64(len(enhanced.HumanImpactStories))
	events := float64(len(enhanced.TimelineEvents))
	implications := float64(len(enhanced.FutureImplications))
	facts := float64(len(enhanced.SurprisingFacts))
	insights := float64(len(enhanced.ExpertInsights))

	return core.ContentRichness{
		TotalDataPoints:     narratives + stats + quotes + concepts + stories + events + implications + facts + insights,
		NarrativeStrength:   clamp10(2*narratives + 2*stories + 1*quotes),
		EvidenceQuality:     clamp10(2*stats + 2*insights + 1*concepts),
		EngagementPotential: clamp10(2*facts + 1.5*quotes + 1*stories),
	}
}

// categoryCount sums the elements across the nine typed categories.
func categoryCount(enhanced *core.EnhancedResearchResult) int {
	return len(enhanced.KeyNarratives) + len(enhanced.CriticalStats) + len(enhanced.CompellingQuotes) +
		len(enhanced.TechnicalConcepts) + len(enhanced.HumanImpactStories) + len(enhanced.TimelineEvents) +
		len(enhanced.FutureImplications) + len(enhanced.SurprisingFacts) + len(enhanced.ExpertInsights)
}

// itemList renders strings as a dashed list for the extraction prompt.
func itemList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var builder strings.Builder
	for _, item := range items {
		builder.WriteString("- " + item + "\n")
	}
	return builder.String()
}

// statList renders statistics with their sources for the extraction prompt.
func statList(stats []core.Statistic) string {
	if len(stats) == 0 {
		return "(none)"
	}
	var builder strings.Builder
	for _, stat := range stats {
		builder.WriteString(fmt.Sprintf("- %s (source: %s)\n", stat.Fact, stat.Source))
	}
	return builder.String()
}
