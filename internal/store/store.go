// Package store persists podcast projects as JSON documents. The pipeline
// consumes it through the narrow ProjectStore contract: read a project,
// patch the fields a stage owns. Updates are last-write-wins; concurrent
// edits to the same project resolve to whichever write lands last.
package store

import (
	"context"
	"fmt"
	"time"

	"podforge/internal/core"
)

// ErrNotFound is returned when a project id does not exist.
var ErrNotFound = fmt.Errorf("project not found")

// ProjectPatch is a partial update of the project fields the pipeline owns.
// Nil fields are left untouched.
type ProjectPatch struct {
	Title         *string
	RawPrompt     *string
	RefinedPrompt *string
	TopicAnalysis *core.TopicAnalysis
	ResearchData  *core.EnhancedResearchResult
	EpisodePlan   *core.EpisodePlanResult
	ScriptContent *core.ScriptResult
	EpisodeScript map[int]*core.ScriptResult // Merged into the per-episode script map
	AudioURL      *string
	EpisodeAudio  map[int]string // Merged into the per-episode audio map
	VoiceSettings *core.VoiceSettings
}

// ProjectStore is the persistence contract the pipeline depends on. The
// pipeline itself only reads and partially updates; create/list/delete
// belong to the surrounding CRUD layer.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *core.Project) error
	GetProject(ctx context.Context, id string) (*core.Project, error)
	ListProjects(ctx context.Context) ([]*core.Project, error)
	UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*core.Project, error)
	DeleteProject(ctx context.Context, id string) error
	Close() error
}

// applyPatch merges a patch into a project in place and bumps UpdatedAt.
func applyPatch(project *core.Project, patch ProjectPatch) {
	if patch.Title != nil {
		project.Title = *patch.Title
	}
	if patch.RawPrompt != nil {
		project.RawPrompt = *patch.RawPrompt
	}
	if patch.RefinedPrompt != nil {
		project.RefinedPrompt = *patch.RefinedPrompt
	}
	if patch.TopicAnalysis != nil {
		project.TopicAnalysis = patch.TopicAnalysis
	}
	if patch.ResearchData != nil {
		project.ResearchData = patch.ResearchData
	}
	if patch.EpisodePlan != nil {
		project.EpisodePlan = patch.EpisodePlan
	}
	if patch.ScriptContent != nil {
		project.ScriptContent = patch.ScriptContent
	}
	if len(patch.EpisodeScript) > 0 {
		if project.EpisodeScripts == nil {
			project.EpisodeScripts = make(map[int]*core.ScriptResult)
		}
		for num, script := range patch.EpisodeScript {
			project.EpisodeScripts[num] = script
		}
	}
	if patch.AudioURL != nil {
		project.AudioURL = *patch.AudioURL
	}
	if len(patch.EpisodeAudio) > 0 {
		if project.EpisodeAudio == nil {
			project.EpisodeAudio = make(map[int]string)
		}
		for num, url := range patch.EpisodeAudio {
			project.EpisodeAudio[num] = url
		}
	}
	if patch.VoiceSettings != nil {
		project.VoiceSettings = *patch.VoiceSettings
	}
	project.UpdatedAt = time.Now().UTC()
}
