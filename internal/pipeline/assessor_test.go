package pipeline

import (
	"context"
	"fmt"
	"testing"

	"podforge/internal/core"
)

func TestAssessFallbackIsFlatSeven(t *testing.T) {
	assessor := NewQualityAssessor(&mockChat{err: fmt.Errorf("provider down")})

	quality := assessor.Assess(context.Background(), core.ScriptResult{Content: "script"}, core.EnhancedResearchResult{})

	for name, score := range map[string]float64{
		"researchDepth":       quality.ResearchDepth,
		"scriptFlow":          quality.ScriptFlow,
		"audienceMatch":       quality.AudienceMatch,
		"engagementPotential": quality.EngagementPotential,
		"factualAccuracy":     quality.FactualAccuracy,
		"overallScore":        quality.OverallScore,
	} {
		if score != 7 {
			t.Errorf("%s = %v, want flat 7", name, score)
		}
	}
	if len(quality.Improvements) == 0 {
		t.Error("fallback should carry a placeholder improvement note")
	}
}

func TestAssessComputesWeightedOverall(t *testing.T) {
	assessor := NewQualityAssessor(&mockChat{
		response: `{"researchDepth": 8, "scriptFlow": 6, "audienceMatch": 7,
			"engagementPotential": 9, "factualAccuracy": 10,
			"improvements": ["use more stats"], "strengths": ["strong open"]}`,
	})

	quality := assessor.Assess(context.Background(), core.ScriptResult{Content: "script"}, core.EnhancedResearchResult{})

	// 8*0.25 + 6*0.20 + 7*0.20 + 9*0.20 + 10*0.15 = 7.9
	if quality.OverallScore != 7.9 {
		t.Errorf("overallScore = %v, want 7.9", quality.OverallScore)
	}
}

func TestAssessClampsOutOfRangeScores(t *testing.T) {
	assessor := NewQualityAssessor(&mockChat{
		response: `{"researchDepth": 14, "scriptFlow": 3, "audienceMatch": 5,
			"engagementPotential": 5, "factualAccuracy": 5}`,
	})

	quality := assessor.Assess(context.Background(), core.ScriptResult{Content: "script"}, core.EnhancedResearchResult{})

	if quality.ResearchDepth != 10 {
		t.Errorf("researchDepth = %v, want clamped 10", quality.ResearchDepth)
	}
}
