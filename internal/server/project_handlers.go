package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"podforge/internal/core"
	"podforge/internal/store"
)

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}

	if _, err := s.projects.ListProjects(r.Context()); err != nil {
		checks["store"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"checks": checks,
		})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"checks": checks,
	})
}

// handleListProjects handles GET /api/projects
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.ListProjects(r.Context())
	if err != nil {
		s.log.Error("Failed to list projects", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	s.respondJSON(w, http.StatusOK, projects)
}

// handleCreateProject handles POST /api/projects
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string              `json:"title"`
		Prompt        string              `json:"prompt"`
		VoiceSettings *core.VoiceSettings `json:"voiceSettings"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	now := time.Now().UTC()
	project := &core.Project{
		ID:        uuid.NewString(),
		Title:     req.Title,
		RawPrompt: req.Prompt,
		VoiceSettings: core.VoiceSettings{
			Model: "tts-1",
			Voice: "alloy",
			Speed: 1.0,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if project.Title == "" {
		project.Title = req.Prompt
	}
	if req.VoiceSettings != nil {
		project.VoiceSettings = *req.VoiceSettings
	}

	if err := s.projects.CreateProject(r.Context(), project); err != nil {
		s.log.Error("Failed to create project", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to create project")
		return
	}
	s.respondJSON(w, http.StatusCreated, project)
}

// handleGetProject handles GET /api/projects/{id}
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.projects.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, project)
}

// handleUpdateProject handles PATCH /api/projects/{id}. Only the fields the
// client owns are patchable here; pipeline stages write their own results.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         *string             `json:"title"`
		Prompt        *string             `json:"prompt"`
		VoiceSettings *core.VoiceSettings `json:"voiceSettings"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	patch := store.ProjectPatch{
		Title:         req.Title,
		RawPrompt:     req.Prompt,
		VoiceSettings: req.VoiceSettings,
	}
	project, err := s.projects.UpdateProject(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, project)
}

// handleDeleteProject handles DELETE /api/projects/{id}
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondPipelineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMarkEpisodeComplete handles POST /api/projects/{id}/episodes/{number}/complete.
// The transition is one-directional: planned episodes become completed and
// never revert.
func (s *Server) handleMarkEpisodeComplete(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		s.respondError(w, http.StatusBadRequest, "invalid episode number")
		return
	}

	id := chi.URLParam(r, "id")
	project, err := s.projects.GetProject(r.Context(), id)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	if project.EpisodePlan == nil {
		s.respondError(w, http.StatusBadRequest, "project has no episode plan")
		return
	}

	plan := *project.EpisodePlan
	found := false
	for idx := range plan.Episodes {
		if plan.Episodes[idx].EpisodeNumber == number {
			plan.Episodes[idx].Status = core.EpisodeStatusCompleted
			found = true
			break
		}
	}
	if !found {
		s.respondError(w, http.StatusBadRequest, "episode is not in the plan")
		return
	}

	updated, err := s.projects.UpdateProject(r.Context(), id, store.ProjectPatch{EpisodePlan: &plan})
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}
