// Package pipeline implements the multi-stage podcast content generation
// workflow: topic analysis, prompt refinement, research, integration,
// episode planning, script generation, quality assessment and audio
// synthesis. Stages are composed by the Engine and run one per request;
// results persist into the project record only after a stage succeeds.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"podforge/internal/ai"
	"podforge/internal/core"
	"podforge/internal/logger"
	"podforge/internal/store"
	"podforge/internal/tts"
)

// Engine aggregates the pipeline stages behind the capability interfaces and
// the project store. Each public method backs one workflow operation and
// persists its result before returning.
type Engine struct {
	analyzer   *TopicAnalyzer
	refiner    *PromptRefiner
	research   *ResearchOrchestrator
	integrator *ResearchIntegrator
	planner    *EpisodePlanner
	scripts    *ScriptGenerator
	assessor   *QualityAssessor
	audio      *AudioSynthesizer
	projects   store.ProjectStore
}

// NewEngine wires the stages over the provided capabilities.
func NewEngine(chat ai.ChatProvider, research ai.ResearchProvider, speech tts.SpeechProvider, files *store.FileStore, projects store.ProjectStore) *Engine {
	fallbacks := NewFallbackLibrary()
	return &Engine{
		analyzer:   NewTopicAnalyzer(chat),
		refiner:    NewPromptRefiner(chat, fallbacks),
		research:   NewResearchOrchestrator(research, fallbacks),
		integrator: NewResearchIntegrator(chat),
		planner:    NewEpisodePlanner(chat),
		scripts:    NewScriptGenerator(chat),
		assessor:   NewQualityAssessor(chat),
		audio:      NewAudioSynthesizer(speech, files),
		projects:   projects,
	}
}

// RefinePrompt runs topic analysis, expertise resolution and prompt
// refinement for a raw prompt, persisting the analysis and refined prompt
// when a project id is given.
func (e *Engine) RefinePrompt(ctx context.Context, projectID, rawPrompt string) (core.PromptRefinementResult, error) {
	if strings.TrimSpace(rawPrompt) == "" {
		return core.PromptRefinementResult{}, newValidationError("prompt-refiner", "prompt is required")
	}

	analysis := e.analyzer.Analyze(ctx, rawPrompt)
	expertise := ResolveExpertise(analysis.Domain)

	result, err := e.refiner.Refine(ctx, rawPrompt, analysis, expertise)
	if err != nil {
		return core.PromptRefinementResult{}, err
	}

	if projectID != "" {
		patch := store.ProjectPatch{
			RefinedPrompt: &result.RefinedPrompt,
			TopicAnalysis: &analysis,
		}
		if _, err := e.projects.UpdateProject(ctx, projectID, patch); err != nil {
			return core.PromptRefinementResult{}, fmt.Errorf("failed to persist refinement: %w", err)
		}
	}
	return result, nil
}

// Research runs the research batch and integration for a refined prompt,
// persisting the enhanced result.
func (e *Engine) Research(ctx context.Context, projectID, refinedPrompt string) (core.EnhancedResearchResult, error) {
	analysis := e.projectAnalysis(ctx, projectID, refinedPrompt)

	raw, err := e.research.Research(ctx, refinedPrompt, analysis)
	if err != nil {
		return core.EnhancedResearchResult{}, err
	}

	enhanced := e.integrator.Integrate(ctx, raw, analysis)

	if projectID != "" {
		patch := store.ProjectPatch{ResearchData: &enhanced}
		if _, err := e.projects.UpdateProject(ctx, projectID, patch); err != nil {
			return core.EnhancedResearchResult{}, fmt.Errorf("failed to persist research: %w", err)
		}
	}
	return enhanced, nil
}

// AnalyzeEpisodes decides episode structure for a project. forceSingle
// overrides any AI recommendation with a locally built one-episode plan.
func (e *Engine) AnalyzeEpisodes(ctx context.Context, projectID string, forceSingle bool) (core.EpisodePlanResult, error) {
	project, err := e.projects.GetProject(ctx, projectID)
	if err != nil {
		return core.EpisodePlanResult{}, err
	}

	prompt := project.RefinedPrompt
	if prompt == "" {
		prompt = project.RawPrompt
	}

	analysis := core.TopicAnalysis{}
	if project.TopicAnalysis != nil {
		analysis = *project.TopicAnalysis
	}
	research := core.EnhancedResearchResult{}
	if project.ResearchData != nil {
		research = *project.ResearchData
	}

	var plan core.EpisodePlanResult
	if forceSingle {
		plan = e.planner.ForceSingleEpisode(prompt, analysis)
	} else {
		plan, err = e.planner.AnalyzeForEpisodes(ctx, prompt, research)
		if err != nil {
			return core.EpisodePlanResult{}, err
		}
	}

	if _, err := e.projects.UpdateProject(ctx, projectID, store.ProjectPatch{EpisodePlan: &plan}); err != nil {
		return core.EpisodePlanResult{}, fmt.Errorf("failed to persist episode plan: %w", err)
	}
	return plan, nil
}

// GenerateScript produces the whole-project script, assesses it, and
// persists the result. Nothing is persisted on failure.
func (e *Engine) GenerateScript(ctx context.Context, projectID string) (core.ScriptResult, error) {
	_, prompt, analysis, research, err := e.loadForGeneration(ctx, projectID)
	if err != nil {
		return core.ScriptResult{}, err
	}

	result, err := e.scripts.Generate(ctx, prompt, research, analysis, DurationForScope(analysis.Scope))
	if err != nil {
		return core.ScriptResult{}, err
	}
	e.attachQuality(ctx, &result, research)

	if _, err := e.projects.UpdateProject(ctx, projectID, store.ProjectPatch{ScriptContent: &result}); err != nil {
		return core.ScriptResult{}, fmt.Errorf("failed to persist script: %w", err)
	}
	return result, nil
}

// GenerateEpisodeScript produces one episode's script within the project's
// plan and persists it under the episode number.
func (e *Engine) GenerateEpisodeScript(ctx context.Context, projectID string, episodeNumber int) (core.ScriptResult, error) {
	project, prompt, analysis, research, err := e.loadForGeneration(ctx, projectID)
	if err != nil {
		return core.ScriptResult{}, err
	}
	if project.EpisodePlan == nil {
		return core.ScriptResult{}, newValidationError("script-generator", "project has no episode plan")
	}

	episode, ok := findEpisode(project.EpisodePlan, episodeNumber)
	if !ok {
		return core.ScriptResult{}, newValidationError("script-generator", fmt.Sprintf("episode %d is not in the plan", episodeNumber))
	}

	result, err := e.scripts.GenerateEpisode(ctx, prompt, research, analysis, episode, project.EpisodePlan)
	if err != nil {
		return core.ScriptResult{}, err
	}
	e.attachQuality(ctx, &result, research)

	patch := store.ProjectPatch{EpisodeScript: map[int]*core.ScriptResult{episodeNumber: &result}}
	if _, err := e.projects.UpdateProject(ctx, projectID, patch); err != nil {
		return core.ScriptResult{}, fmt.Errorf("failed to persist episode script: %w", err)
	}
	return result, nil
}

// GenerateAllRemaining generates scripts for every planned episode that has
// none yet, strictly sequentially in increasing episode number. One episode
// completes and persists before the next begins; this throttle against the
// external provider must not be parallelized. The first failure stops the
// batch, keeping every episode completed before it.
func (e *Engine) GenerateAllRemaining(ctx context.Context, projectID string) (map[int]*core.ScriptResult, error) {
	project, err := e.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.EpisodePlan == nil {
		return nil, newValidationError("script-generator", "project has no episode plan")
	}

	var remaining []int
	for _, episode := range project.EpisodePlan.Episodes {
		if _, done := project.EpisodeScripts[episode.EpisodeNumber]; !done {
			remaining = append(remaining, episode.EpisodeNumber)
		}
	}
	sort.Ints(remaining)

	generated := make(map[int]*core.ScriptResult, len(remaining))
	for _, number := range remaining {
		result, err := e.GenerateEpisodeScript(ctx, projectID, number)
		if err != nil {
			return generated, err
		}
		script := result
		generated[number] = &script
		logger.Info("Episode script generated", "project_id", projectID, "episode", number)
	}
	return generated, nil
}

// ScriptSuggestions returns improvement notes for a script. When content is
// empty the project's stored script is reviewed instead.
func (e *Engine) ScriptSuggestions(ctx context.Context, projectID, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" && projectID != "" {
		project, err := e.projects.GetProject(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if project.ScriptContent != nil {
			content = project.ScriptContent.Content
		}
	}
	return e.scripts.Suggestions(ctx, content)
}

// GenerateAudio synthesizes audio for a project script. episodeNumber 0
// targets the whole-project script; a positive number targets that episode's
// script. The artifact URL persists on the project.
func (e *Engine) GenerateAudio(ctx context.Context, projectID string, episodeNumber int) (core.AudioArtifact, error) {
	project, err := e.projects.GetProject(ctx, projectID)
	if err != nil {
		return core.AudioArtifact{}, err
	}

	var content string
	switch {
	case episodeNumber > 0:
		script, ok := project.EpisodeScripts[episodeNumber]
		if !ok {
			return core.AudioArtifact{}, newValidationError("audio-synthesizer", fmt.Sprintf("episode %d has no script", episodeNumber))
		}
		content = script.Content
	case project.ScriptContent != nil:
		content = project.ScriptContent.Content
	default:
		return core.AudioArtifact{}, newValidationError("audio-synthesizer", "project has no script")
	}

	artifact, err := e.audio.Synthesize(ctx, content, project.VoiceSettings)
	if err != nil {
		return core.AudioArtifact{}, err
	}

	patch := store.ProjectPatch{}
	if episodeNumber > 0 {
		patch.EpisodeAudio = map[int]string{episodeNumber: artifact.AudioURL}
	} else {
		patch.AudioURL = &artifact.AudioURL
	}
	if _, err := e.projects.UpdateProject(ctx, projectID, patch); err != nil {
		return core.AudioArtifact{}, fmt.Errorf("failed to persist audio url: %w", err)
	}
	return artifact, nil
}

// GenerateAudioSegment synthesizes one script segment without touching the
// stored project audio; segment regeneration is ephemeral until the caller
// stitches it back in.
func (e *Engine) GenerateAudioSegment(ctx context.Context, projectID, segmentText string, segmentIndex int) (core.AudioArtifact, error) {
	settings := core.VoiceSettings{}
	if projectID != "" {
		project, err := e.projects.GetProject(ctx, projectID)
		if err != nil {
			return core.AudioArtifact{}, err
		}
		settings = project.VoiceSettings
	}
	return e.audio.SynthesizeSegment(ctx, segmentText, settings, segmentIndex)
}

// attachQuality runs the advisory quality assessment; it annotates the
// result, never fails it.
func (e *Engine) attachQuality(ctx context.Context, result *core.ScriptResult, research core.EnhancedResearchResult) {
	quality := e.assessor.Assess(ctx, *result, research)
	result.QualityAssessment = &quality
	result.QualityScore = quality.OverallScore
}

// loadForGeneration reads a project and resolves the prompt, analysis and
// research a script generation needs.
func (e *Engine) loadForGeneration(ctx context.Context, projectID string) (*core.Project, string, core.TopicAnalysis, core.EnhancedResearchResult, error) {
	project, err := e.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, "", core.TopicAnalysis{}, core.EnhancedResearchResult{}, err
	}

	prompt := project.RefinedPrompt
	if prompt == "" {
		prompt = project.RawPrompt
	}

	analysis := core.TopicAnalysis{Scope: "multi-faceted", Angle: "explanatory"}
	if project.TopicAnalysis != nil {
		analysis = *project.TopicAnalysis
	}

	research := core.EnhancedResearchResult{}
	if project.ResearchData != nil {
		research = *project.ResearchData
	}

	return project, prompt, analysis, research, nil
}

// projectAnalysis fetches the stored topic analysis, or derives one from the
// prompt when the project has none yet.
func (e *Engine) projectAnalysis(ctx context.Context, projectID, prompt string) core.TopicAnalysis {
	if projectID != "" {
		if project, err := e.projects.GetProject(ctx, projectID); err == nil && project.TopicAnalysis != nil {
			return *project.TopicAnalysis
		}
	}
	return e.analyzer.Analyze(ctx, prompt)
}

// findEpisode locates an episode by number within a plan.
func findEpisode(plan *core.EpisodePlanResult, number int) (core.Episode, bool) {
	for _, episode := range plan.Episodes {
		if episode.EpisodeNumber == number {
			return episode, true
		}
	}
	return core.Episode{}, false
}
