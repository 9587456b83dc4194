package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"podforge/internal/ai"
	"podforge/internal/core"
)

// EpisodePlanner decides single- versus multi-episode structure from the
// refined prompt and research. Unlike the refinement and research stages this
// one propagates failures: a plan the model could not produce halts the
// workflow instead of degrading into filler.
type EpisodePlanner struct {
	chat    ai.ChatProvider
	timeout time.Duration
}

// NewEpisodePlanner creates a planner over the chat capability.
func NewEpisodePlanner(chat ai.ChatProvider) *EpisodePlanner {
	return &EpisodePlanner{
		chat:    chat,
		timeout: 60 * time.Second,
	}
}

const episodePlanPrompt = `Decide whether this podcast topic needs one episode or a short series.

Topic brief: %s

Research highlights:
%s

Prefer a single episode unless the material clearly cannot fit 15-20 minutes.
Respond with JSON only, exactly this shape:
{
  "isMultiEpisode": true,
  "totalEpisodes": 3,
  "episodes": [
    {
      "episodeNumber": 1,
      "title": "...",
      "description": "1-2 sentences",
      "keyTopics": ["2-4 topics"],
      "estimatedDuration": 18
    }
  ],
  "reasoning": "one short paragraph explaining the structure"
}`

// AnalyzeForEpisodes asks the model for an episode breakdown. All failure
// kinds propagate; only the numbering is repaired locally when the content is
// otherwise usable.
func (p *EpisodePlanner) AnalyzeForEpisodes(ctx context.Context, refinedPrompt string, research core.EnhancedResearchResult) (core.EpisodePlanResult, error) {
	if strings.TrimSpace(refinedPrompt) == "" {
		return core.EpisodePlanResult{}, newValidationError("episode-planner", "refined prompt is required")
	}
	if p.chat == nil {
		return core.EpisodePlanResult{}, newStageError("episode-planner", "episode planning is unavailable", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	response, err := p.chat.Complete(ctx, ai.CompletionRequest{
		Prompt:      fmt.Sprintf(episodePlanPrompt, refinedPrompt, researchHighlights(research)),
		Temperature: 0.5,
		MaxTokens:   2048,
		JSONMode:    true,
	})
	if err != nil {
		return core.EpisodePlanResult{}, newStageError("episode-planner", "episode planning failed", err)
	}

	var plan core.EpisodePlanResult
	if err := decodeModelJSON(response, &plan); err != nil {
		return core.EpisodePlanResult{}, newStageError("episode-planner", "episode plan response was not usable", err)
	}
	if len(plan.Episodes) == 0 {
		return core.EpisodePlanResult{}, newStageError("episode-planner", "episode plan contained no episodes", nil)
	}

	normalizePlan(&plan)
	return plan, nil
}

// ForceSingleEpisode synthesizes a one-episode plan locally, overriding any
// prior recommendation. No AI call is made.
func (p *EpisodePlanner) ForceSingleEpisode(refinedPrompt string, analysis core.TopicAnalysis) core.EpisodePlanResult {
	title := strings.TrimSpace(refinedPrompt)
	if idx := strings.IndexAny(title, ".!?\n"); idx > 0 {
		title = title[:idx]
	}
	if len(title) > 80 {
		title = title[:80]
	}

	return core.EpisodePlanResult{
		IsMultiEpisode: false,
		TotalEpisodes:  1,
		Episodes: []core.Episode{
			{
				EpisodeNumber:     1,
				Title:             title,
				Description:       "A complete single-episode treatment of the topic.",
				KeyTopics:         analysis.KeyElements,
				EstimatedDuration: DurationForScope(analysis.Scope),
				Status:            core.EpisodeStatusPlanned,
			},
		},
		Reasoning: "Single episode selected by the user.",
	}
}

// normalizePlan repairs the numbering invariant at the parse boundary:
// episodes are renumbered 1..N in their listed order, totals reconciled, and
// missing fields defaulted. Content from the model is otherwise kept.
func normalizePlan(plan *core.EpisodePlanResult) {
	sort.SliceStable(plan.Episodes, func(a, b int) bool {
		return plan.Episodes[a].EpisodeNumber < plan.Episodes[b].EpisodeNumber
	})

	for idx := range plan.Episodes {
		plan.Episodes[idx].EpisodeNumber = idx + 1
		if plan.Episodes[idx].Status == "" {
			plan.Episodes[idx].Status = core.EpisodeStatusPlanned
		}
		if plan.Episodes[idx].EstimatedDuration <= 0 {
			plan.Episodes[idx].EstimatedDuration = 18
		}
	}

	plan.TotalEpisodes = len(plan.Episodes)
	plan.IsMultiEpisode = plan.TotalEpisodes > 1
}

// researchHighlights summarizes the enhanced research for the planning prompt.
func researchHighlights(research core.EnhancedResearchResult) string {
	var builder strings.Builder

	writeSection := func(label string, items []string, max int) {
		if len(items) == 0 {
			return
		}
		if len(items) > max {
			items = items[:max]
		}
		builder.WriteString(label + ":\n")
		for _, item := range items {
			builder.WriteString("- " + item + "\n")
		}
	}

	writeSection("Narratives", research.KeyNarratives, 4)
	writeSection("Concepts", research.TechnicalConcepts, 4)
	writeSection("Key points", research.KeyPoints, 6)

	if len(research.CriticalStats) > 0 {
		builder.WriteString("Statistics:\n")
		for idx, stat := range research.CriticalStats {
			if idx == 4 {
				break
			}
			builder.WriteString("- " + stat.Fact + "\n")
		}
	}

	if builder.Len() == 0 {
		return "(no research available)"
	}
	return builder.String()
}
