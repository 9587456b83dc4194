package core

import "time"

// TopicAnalysis classifies a raw podcast topic into a structured profile.
// It is created once per project from the raw prompt and is immutable after
// that; the prompt refiner and domain expertise resolver consume it.
type TopicAnalysis struct {
	Domain         string   `json:"domain"`         // Coarse subject category (fintech, healthcare, ...)
	Complexity     string   `json:"complexity"`     // beginner | intermediate | expert
	Audience       string   `json:"audience"`       // general | technical | business | academic | student
	Angle          string   `json:"angle"`          // historical | technical | human-impact | market-analysis | comparative | explanatory
	Scope          string   `json:"scope"`          // single-concept | multi-faceted | comparative
	KeyElements    []string `json:"keyElements"`    // Ordered list of elements the topic covers
	ContentGoals   []string `json:"contentGoals"`   // What the episode should achieve
	ExpertiseLevel string   `json:"expertiseLevel"` // Level of expertise the content should convey
}

// DomainExpertise is the reusable expert persona resolved from a domain tag.
type DomainExpertise struct {
	ExpertTitle       string   `json:"expertTitle"`
	Description       string   `json:"description"`
	Requirements      []string `json:"requirements"`
	AudienceGuidance  string   `json:"audienceGuidance"`
	StructureTemplate string   `json:"structureTemplate"` // Named template id used by the script generator
	KeyQuestions      []string `json:"keyQuestions"`
}

// PromptRefinementResult is the polished content brief produced by the
// prompt refiner. Fallback and AI-produced instances share this shape.
type PromptRefinementResult struct {
	RefinedPrompt        string   `json:"refinedPrompt"`
	FocusAreas           []string `json:"focusAreas"`
	SuggestedDuration    int      `json:"suggestedDuration"` // Minutes, derived from scope, never from the model
	TargetAudience       string   `json:"targetAudience"`
	ContentStrategy      string   `json:"contentStrategy,omitempty"`
	ResearchRequirements []string `json:"researchRequirements,omitempty"`
}

// ResearchSource is a single source referenced by raw research.
type ResearchSource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Summary     string `json:"summary"`
	FullContent string `json:"fullContent,omitempty"`
}

// Statistic pairs a factual claim with its source attribution.
type Statistic struct {
	Fact   string `json:"fact"`
	Source string `json:"source"`
}

// ResearchResult holds the raw aggregated output of the research orchestrator.
type ResearchResult struct {
	Sources    []ResearchSource `json:"sources"`
	KeyPoints  []string         `json:"keyPoints"`
	Statistics []Statistic      `json:"statistics"`
	Outline    []string         `json:"outline"`
}

// TimelineEvent is a dated event extracted from research.
type TimelineEvent struct {
	Year  string `json:"year"`
	Event string `json:"event"`
}

// ExpertInsight is an attributed expert statement extracted from research.
type ExpertInsight struct {
	Expert  string `json:"expert"`
	Insight string `json:"insight"`
}

// UtilizationPlan assigns structured research elements to script slots.
type UtilizationPlan struct {
	Intro           []string `json:"intro"`
	Body            []string `json:"body"`
	Conclusion      []string `json:"conclusion"`
	EngagementHooks []string `json:"engagementHooks"`
}

// ContentRichness summarizes how much and how strong the research material is.
// Every score is clamped to the [0, 10] range regardless of input volume.
type ContentRichness struct {
	TotalDataPoints     float64 `json:"totalDataPoints"`
	NarrativeStrength   float64 `json:"narrativeStrength"`
	EvidenceQuality     float64 `json:"evidenceQuality"`
	EngagementPotential float64 `json:"engagementPotential"`
}

// EnhancedResearchResult extends raw research with nine typed categories plus
// a derived utilization plan and richness scoring.
type EnhancedResearchResult struct {
	ResearchResult

	KeyNarratives      []string        `json:"keyNarratives"`
	CriticalStats      []Statistic     `json:"criticalStats"`
	CompellingQuotes   []string        `json:"compellingQuotes"`
	TechnicalConcepts  []string        `json:"technicalConcepts"`
	HumanImpactStories []string        `json:"humanImpactStories"`
	TimelineEvents     []TimelineEvent `json:"timelineEvents"`
	FutureImplications []string        `json:"futureImplications"`
	SurprisingFacts    []string        `json:"surprisingFacts"`
	ExpertInsights     []ExpertInsight `json:"expertInsights"`

	UtilizationPlan UtilizationPlan `json:"utilizationPlan"`
	ContentRichness ContentRichness `json:"contentRichness"`
}

// Episode statuses. Transitions are one-directional: planned -> completed,
// set only by an explicit user action.
const (
	EpisodeStatusPlanned   = "planned"
	EpisodeStatusCompleted = "completed"
)

// Episode is one entry of an episode plan.
type Episode struct {
	EpisodeNumber     int      `json:"episodeNumber"` // 1-based, contiguous within the plan
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	KeyTopics         []string `json:"keyTopics"`
	EstimatedDuration int      `json:"estimatedDuration"` // Minutes
	Status            string   `json:"status"`
}

// EpisodePlanResult is the outcome of the episode planning stage.
// Invariant: TotalEpisodes == len(Episodes) and episode numbers are the
// unique contiguous set {1..TotalEpisodes}.
type EpisodePlanResult struct {
	IsMultiEpisode bool      `json:"isMultiEpisode"`
	TotalEpisodes  int       `json:"totalEpisodes"`
	Episodes       []Episode `json:"episodes"`
	Reasoning      string    `json:"reasoning"`
}

// Validate checks the episode numbering invariant.
func (p *EpisodePlanResult) Validate() bool {
	if p.TotalEpisodes < 1 || len(p.Episodes) != p.TotalEpisodes {
		return false
	}
	seen := make(map[int]bool, len(p.Episodes))
	for _, ep := range p.Episodes {
		if ep.EpisodeNumber < 1 || ep.EpisodeNumber > p.TotalEpisodes || seen[ep.EpisodeNumber] {
			return false
		}
		seen[ep.EpisodeNumber] = true
	}
	return true
}

// ScriptSection is one timed section of a generated script.
type ScriptSection struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Duration int    `json:"duration"` // Seconds
}

// ScriptAnalytics holds counts recomputed from the script content rather than
// trusted from the model response.
type ScriptAnalytics struct {
	WordCount         int     `json:"wordCount"`
	ReadingTime       float64 `json:"readingTime"` // Minutes at 200 wpm
	SpeechTime        float64 `json:"speechTime"`  // Seconds at 150 wpm
	PauseCount        int     `json:"pauseCount"`
	StatisticsUsed    int     `json:"statisticsUsed,omitempty"`
	StoriesIncluded   int     `json:"storiesIncluded,omitempty"`
	ConceptsExplained int     `json:"conceptsExplained,omitempty"`
	EngagementHooks   int     `json:"engagementHooks,omitempty"`
}

// ResearchUtilization counts research elements actually used in a script.
type ResearchUtilization struct {
	Narratives int `json:"narratives"`
	Statistics int `json:"statistics"`
	Quotes     int `json:"quotes"`
	Concepts   int `json:"concepts"`
	Stories    int `json:"stories"`
}

// ScriptResult is a fully generated script with timing and analytics. One
// exists per episode (keyed by episode number for multi-episode projects)
// and is overwritten wholesale on regeneration.
type ScriptResult struct {
	Content             string               `json:"content"` // Full text with inline [pause]/[emphasis]/[transition] markers
	Sections            []ScriptSection      `json:"sections"`
	TotalDuration       int                  `json:"totalDuration"` // Seconds
	Analytics           ScriptAnalytics      `json:"analytics"`
	ResearchUtilization *ResearchUtilization `json:"researchUtilization,omitempty"`
	QualityScore        float64              `json:"qualityScore,omitempty"`
	QualityAssessment   *ContentQuality      `json:"qualityAssessment,omitempty"`
}

// ContentQuality scores a script against its source research. Sub-scores are
// 1-10; the overall score is a weighted average and may be fractional.
type ContentQuality struct {
	ResearchDepth       float64  `json:"researchDepth"`
	ScriptFlow          float64  `json:"scriptFlow"`
	AudienceMatch       float64  `json:"audienceMatch"`
	EngagementPotential float64  `json:"engagementPotential"`
	FactualAccuracy     float64  `json:"factualAccuracy"`
	OverallScore        float64  `json:"overallScore"`
	Improvements        []string `json:"improvements"`
	Strengths           []string `json:"strengths"`
}

// VoiceSettings selects the TTS voice configuration for a project.
type VoiceSettings struct {
	Model string  `json:"model"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"` // 0.5 - 2.0
}

// AudioArtifact is the result of audio synthesis for a script or segment.
type AudioArtifact struct {
	AudioURL string `json:"audioUrl"`
	Duration int    `json:"duration"` // Estimated seconds from word count, not measured
}

// Project is the aggregate record the pipeline reads from and writes results
// into. The surrounding CRUD layer owns its lifecycle; pipeline stages only
// patch the fields they produce. Updates are last-write-wins; UpdatedAt is
// surfaced so the storage layer could add an optimistic concurrency check.
type Project struct {
	ID             string                  `json:"id"`
	Title          string                  `json:"title"`
	RawPrompt      string                  `json:"rawPrompt"`
	RefinedPrompt  string                  `json:"refinedPrompt,omitempty"`
	TopicAnalysis  *TopicAnalysis          `json:"topicAnalysis,omitempty"`
	ResearchData   *EnhancedResearchResult `json:"researchData,omitempty"`
	EpisodePlan    *EpisodePlanResult      `json:"episodePlan,omitempty"`
	ScriptContent  *ScriptResult           `json:"scriptContent,omitempty"`  // Single-episode projects
	EpisodeScripts map[int]*ScriptResult   `json:"episodeScripts,omitempty"` // Keyed by episode number
	AudioURL       string                  `json:"audioUrl,omitempty"`
	EpisodeAudio   map[int]string          `json:"episodeAudioUrls,omitempty"`
	VoiceSettings  VoiceSettings           `json:"voiceSettings"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}
