package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"podforge/internal/ai"
	"podforge/internal/core"
	"podforge/internal/logger"
)

// QualityAssessor scores a generated script against its source research.
// Assessment is advisory and never blocks the pipeline: any failure resolves
// to a neutral flat score rather than an error.
type QualityAssessor struct {
	chat    ai.ChatProvider
	timeout time.Duration
}

// NewQualityAssessor creates an assessor over the chat capability.
func NewQualityAssessor(chat ai.ChatProvider) *QualityAssessor {
	return &QualityAssessor{
		chat:    chat,
		timeout: 45 * time.Second,
	}
}

// overall score weights per dimension.
const (
	weightResearchDepth       = 0.25
	weightScriptFlow          = 0.20
	weightAudienceMatch       = 0.20
	weightEngagementPotential = 0.20
	weightFactualAccuracy     = 0.15
)

const assessmentPrompt = `Score this podcast script against the research it was built from.

Script:
%s

Research key points:
%s

Score each dimension 1-10. Respond with JSON only, exactly this shape:
{
  "researchDepth": 7,
  "scriptFlow": 7,
  "audienceMatch": 7,
  "engagementPotential": 7,
  "factualAccuracy": 7,
  "improvements": ["2-4 specific, actionable notes"],
  "strengths": ["2-4 things the script does well"]
}`

// Assess scores the script. It never returns an error: failures yield the
// neutral fallback assessment.
func (a *QualityAssessor) Assess(ctx context.Context, script core.ScriptResult, research core.EnhancedResearchResult) core.ContentQuality {
	if a.chat == nil {
		return neutralAssessment()
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	response, err := a.chat.Complete(ctx, ai.CompletionRequest{
		Prompt:      fmt.Sprintf(assessmentPrompt, excerpt(script.Content, 6000), itemList(research.KeyPoints)),
		Temperature: 0.2,
		MaxTokens:   1024,
		JSONMode:    true,
	})
	if err != nil {
		logger.Warn("Quality assessment call failed, using neutral score", "error", err.Error())
		return neutralAssessment()
	}

	var quality core.ContentQuality
	if err := decodeModelJSON(response, &quality); err != nil {
		logger.Warn("Quality assessment response unusable, using neutral score", "parse_error", err.Error())
		return neutralAssessment()
	}
	if quality.ResearchDepth == 0 && quality.ScriptFlow == 0 {
		return neutralAssessment()
	}

	clampScores(&quality)
	quality.OverallScore = overallScore(quality)
	return quality
}

// neutralAssessment is the flat non-blocking fallback: 7/10 on every
// dimension with a placeholder note, so quality gating never halts progress.
func neutralAssessment() core.ContentQuality {
	return core.ContentQuality{
		ResearchDepth:       7,
		ScriptFlow:          7,
		AudienceMatch:       7,
		EngagementPotential: 7,
		FactualAccuracy:     7,
		OverallScore:        7,
		Improvements:        []string{"Automated quality assessment was unavailable; review the script manually."},
		Strengths:           []string{"Script generated successfully."},
	}
}

// overallScore is the weighted average of the five dimensions, rounded to
// one decimal.
func overallScore(quality core.ContentQuality) float64 {
	score := quality.ResearchDepth*weightResearchDepth +
		quality.ScriptFlow*weightScriptFlow +
		quality.AudienceMatch*weightAudienceMatch +
		quality.EngagementPotential*weightEngagementPotential +
		quality.FactualAccuracy*weightFactualAccuracy
	return math.Round(score*10) / 10
}

func clampScores(quality *core.ContentQuality) {
	quality.ResearchDepth = clamp10(quality.ResearchDepth)
	quality.ScriptFlow = clamp10(quality.ScriptFlow)
	quality.AudienceMatch = clamp10(quality.AudienceMatch)
	quality.EngagementPotential = clamp10(quality.EngagementPotential)
	quality.FactualAccuracy = clamp10(quality.FactualAccuracy)
}

// excerpt bounds the script text included in the prompt.
func excerpt(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	return text[:max] + "\n[truncated]"
}
