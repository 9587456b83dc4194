package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"podforge/internal/core"
)

func manyItems(prefix string, n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("%s item number %d with enough words", prefix, i)
	}
	return items
}

func TestRichnessScoresNeverExceedTen(t *testing.T) {
	tests := []struct {
		name     string
		enhanced core.EnhancedResearchResult
	}{
		{"empty", core.EnhancedResearchResult{}},
		{
			name: "pathologically long lists",
			enhanced: core.EnhancedResearchResult{
				KeyNarratives:      manyItems("narrative", 100),
				CompellingQuotes:   manyItems("quote", 100),
				TechnicalConcepts:  manyItems("concept", 100),
				HumanImpactStories: manyItems("story", 100),
				FutureImplications: manyItems("implication", 100),
				SurprisingFacts:    manyItems("fact", 100),
			},
		},
		{
			name: "moderate mix",
			enhanced: core.EnhancedResearchResult{
				KeyNarratives:   manyItems("narrative", 3),
				SurprisingFacts: manyItems("fact", 2),
				CriticalStats:   []core.Statistic{{Fact: "one stat"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			richness := scoreRichness(&tt.enhanced)

			for name, score := range map[string]float64{
				"narrativeStrength":   richness.NarrativeStrength,
				"evidenceQuality":     richness.EvidenceQuality,
				"engagementPotential": richness.EngagementPotential,
			} {
				if score < 0 || score > 10 {
					t.Errorf("%s = %v, want within [0, 10]", name, score)
				}
			}
		})
	}
}

func TestRichnessWeights(t *testing.T) {
	enhanced := core.EnhancedResearchResult{
		KeyNarratives:      manyItems("n", 2), // 2x2 = 4
		HumanImpactStories: manyItems("s", 1), // 2x1 = 2
		CompellingQuotes:   manyItems("q", 2), // 1x2 = 2
	}

	richness := scoreRichness(&enhanced)
	if richness.NarrativeStrength != 8 {
		t.Errorf("narrativeStrength = %v, want 8 (2x2 + 2x1 + 1x2)", richness.NarrativeStrength)
	}
	if richness.TotalDataPoints != 5 {
		t.Errorf("totalDataPoints = %v, want 5", richness.TotalDataPoints)
	}
}

func TestPositionalSplitPreservesElementCount(t *testing.T) {
	tests := []struct {
		name      string
		keyPoints int
		stats     int
	}{
		{"typical", 8, 3},
		{"exactly the narrative slice", 3, 0},
		{"fewer than the narrative slice", 2, 1},
		{"empty", 0, 0},
		{"large", 40, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			research := core.ResearchResult{
				KeyPoints: manyItems("point", tt.keyPoints),
			}
			for i := 0; i < tt.stats; i++ {
				research.Statistics = append(research.Statistics, core.Statistic{Fact: fmt.Sprintf("stat %d", i)})
			}

			enhanced := positionalSplit(research)

			if got := categoryCount(&enhanced); got != tt.keyPoints+tt.stats {
				t.Errorf("category count = %d, want %d (input preserved)", got, tt.keyPoints+tt.stats)
			}
		})
	}
}

func TestPositionalSplitPlacement(t *testing.T) {
	research := core.ResearchResult{
		KeyPoints: []string{"first", "second", "third", "fourth", "fifth", "sixth", "seventh"},
	}

	enhanced := positionalSplit(research)

	if !reflect.DeepEqual(enhanced.KeyNarratives, []string{"first", "second", "third"}) {
		t.Errorf("keyNarratives = %v, want leading three", enhanced.KeyNarratives)
	}
	if !reflect.DeepEqual(enhanced.FutureImplications, []string{"sixth", "seventh"}) {
		t.Errorf("futureImplications = %v, want trailing two", enhanced.FutureImplications)
	}
	if len(enhanced.TechnicalConcepts)+len(enhanced.SurprisingFacts) != 2 {
		t.Errorf("middle split = %v + %v, want the two middle points",
			enhanced.TechnicalConcepts, enhanced.SurprisingFacts)
	}
}

func TestUtilizationPlanIsDeterministic(t *testing.T) {
	enhanced := core.EnhancedResearchResult{
		KeyNarratives:      []string{"the origin story", "the scaling story"},
		SurprisingFacts:    []string{"an unexpected figure"},
		CriticalStats:      []core.Statistic{{Fact: "14 billion transactions"}},
		FutureImplications: []string{"what comes next"},
	}

	first := buildUtilizationPlan(&enhanced)
	second := buildUtilizationPlan(&enhanced)

	if !reflect.DeepEqual(first, second) {
		t.Error("utilization plan should be deterministic for identical input")
	}
	if len(first.Intro) == 0 || len(first.Body) == 0 || len(first.Conclusion) == 0 {
		t.Errorf("plan slots unexpectedly empty: %+v", first)
	}
	if first.Intro[0] != "Open with: an unexpected figure" {
		t.Errorf("intro[0] = %q, want the leading surprising fact", first.Intro[0])
	}
}

func TestIntegrateFallsBackOnModelFailure(t *testing.T) {
	integrator := NewResearchIntegrator(&mockChat{err: fmt.Errorf("provider down")})
	research := core.ResearchResult{
		KeyPoints:  manyItems("point", 5),
		Statistics: []core.Statistic{{Fact: "a stat", Source: "somewhere"}},
	}

	enhanced := integrator.Integrate(context.Background(), research, core.TopicAnalysis{})

	if categoryCount(&enhanced) != 6 {
		t.Errorf("category count = %d, want 6 from positional split", categoryCount(&enhanced))
	}
	if enhanced.ContentRichness.TotalDataPoints != 6 {
		t.Errorf("totalDataPoints = %v, want 6", enhanced.ContentRichness.TotalDataPoints)
	}
	if len(enhanced.KeyPoints) != 5 {
		t.Error("raw research should be carried through on the fallback path")
	}
}

func TestIntegrateUsesModelCategories(t *testing.T) {
	integrator := NewResearchIntegrator(&mockChat{
		response: "```json\n" + `{"keyNarratives": ["a story arc"],
			"criticalStats": [{"fact": "a figure", "source": "report"}],
			"surprisingFacts": ["a twist"]}` + "\n```",
	})

	enhanced := integrator.Integrate(context.Background(), core.ResearchResult{KeyPoints: []string{"something"}}, core.TopicAnalysis{})

	if len(enhanced.KeyNarratives) != 1 || enhanced.KeyNarratives[0] != "a story arc" {
		t.Errorf("keyNarratives = %v, fences should be stripped before parsing", enhanced.KeyNarratives)
	}
}
