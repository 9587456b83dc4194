package pipeline

import (
	"strings"

	"podforge/internal/core"
)

// FallbackLibrary centralizes the topic-keyed fallback content shared by the
// prompt refiner and the research orchestrator. Keeping the literals in one
// table avoids the drift that comes from repeating them per stage.
type FallbackLibrary struct {
	topics []topicFallback
}

// topicFallback holds deterministic substitute content for one topic family.
type topicFallback struct {
	keywords   []string
	focusAreas []string
	statistics []core.Statistic
}

// NewFallbackLibrary builds the default topic-keyed fallback table.
func NewFallbackLibrary() *FallbackLibrary {
	return &FallbackLibrary{
		topics: []topicFallback{
			{
				keywords: []string{"upi", "payment", "fintech", "banking"},
				focusAreas: []string{
					"How the payment flow works end to end",
					"Adoption drivers and market scale",
					"Security and trust mechanisms",
				},
				statistics: []core.Statistic{
					{Fact: "UPI processed over 14 billion transactions in a single month in 2024", Source: "NPCI monthly statistics"},
					{Fact: "Digital payments in India grew more than 50% year over year", Source: "RBI annual report"},
					{Fact: "Over 300 banks participate in the UPI network", Source: "NPCI ecosystem data"},
				},
			},
			{
				keywords: []string{"health", "medical", "patient", "clinical"},
				focusAreas: []string{
					"Patient outcomes and quality of care",
					"Technology adoption in clinical settings",
					"Regulation and privacy considerations",
				},
				statistics: []core.Statistic{
					{Fact: "Global digital health funding exceeded $20 billion annually", Source: "Industry funding trackers"},
					{Fact: "Telehealth usage remains several times above pre-2020 levels", Source: "Healthcare utilization surveys"},
				},
			},
			{
				keywords: []string{"ai", "machine learning", "artificial intelligence"},
				focusAreas: []string{
					"Core concepts explained for the target audience",
					"Real-world applications and case studies",
					"Limitations and open problems",
				},
				statistics: []core.Statistic{
					{Fact: "Enterprise AI adoption more than doubled in the last five years", Source: "Industry adoption surveys"},
					{Fact: "A majority of organizations report using AI in at least one business function", Source: "Global management surveys"},
				},
			},
		},
	}
}

// forTopic returns the fallback entry whose keywords match the prompt, or a
// generic entry when nothing matches.
func (f *FallbackLibrary) forTopic(prompt string) topicFallback {
	lower := strings.ToLower(prompt)
	for _, topic := range f.topics {
		for _, keyword := range topic.keywords {
			if strings.Contains(lower, keyword) {
				return topic
			}
		}
	}
	return topicFallback{
		focusAreas: []string{
			"Core concepts and definitions",
			"Practical examples and applications",
			"Common questions and misconceptions",
		},
		statistics: []core.Statistic{
			{Fact: "Relevant adoption and usage figures to be verified during production", Source: "Editorial research"},
		},
	}
}

// RefinementFallback produces the deterministic substitute brief used when
// prompt refinement times out or fails. It echoes the raw prompt with
// generic focus areas, an 18-minute duration and general-audience targeting.
func (f *FallbackLibrary) RefinementFallback(rawPrompt string) core.PromptRefinementResult {
	topic := f.forTopic(rawPrompt)
	return core.PromptRefinementResult{
		RefinedPrompt:     rawPrompt,
		FocusAreas:        topic.focusAreas,
		SuggestedDuration: 18,
		TargetAudience:    "general audience",
	}
}

// ResearchFallback produces the topic-generic research result used when the
// whole research batch times out. Key points and outline are fixed six-item
// lists; statistics are keyed off the prompt text.
func (f *FallbackLibrary) ResearchFallback(prompt string) core.ResearchResult {
	topic := f.forTopic(prompt)
	return core.ResearchResult{
		Sources: []core.ResearchSource{
			{
				Title:   "Background overview",
				URL:     "https://en.wikipedia.org/wiki/Special:Search",
				Summary: "General background reading on " + prompt,
			},
			{
				Title:   "Industry reporting",
				URL:     "https://news.google.com",
				Summary: "Recent coverage related to " + prompt,
			},
		},
		KeyPoints: []string{
			"Definition and origin of the topic",
			"How the underlying mechanism works",
			"Who the main participants and stakeholders are",
			"Adoption trends and current scale",
			"Common criticisms and open challenges",
			"Where the field is heading next",
		},
		Statistics: topic.statistics,
		Outline: []string{
			"Opening hook and framing",
			"Background and context",
			"How it works",
			"Impact and adoption",
			"Challenges and criticisms",
			"Outlook and closing thoughts",
		},
	}
}
