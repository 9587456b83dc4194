package server

import (
	"net/http"
)

// handleRefinePrompt handles POST /ai/refine-prompt
func (s *Server) handleRefinePrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"projectId"`
		Prompt    string `json:"prompt"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.engine.RefinePrompt(r.Context(), req.ProjectID, req.Prompt)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleResearch handles POST /ai/research
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID     string `json:"projectId"`
		RefinedPrompt string `json:"refinedPrompt"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.engine.Research(r.Context(), req.ProjectID, req.RefinedPrompt)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleAnalyzeEpisodes handles POST /ai/analyze-episodes
func (s *Server) handleAnalyzeEpisodes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID   string `json:"projectId"`
		ForceSingle bool   `json:"forceSingle"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	plan, err := s.engine.AnalyzeEpisodes(r.Context(), req.ProjectID, req.ForceSingle)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, plan)
}

// handleGenerateScript handles POST /ai/generate-script
func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"projectId"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.engine.GenerateScript(r.Context(), req.ProjectID)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleGenerateEpisodeScript handles POST /ai/generate-episode-script
func (s *Server) handleGenerateEpisodeScript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID     string `json:"projectId"`
		EpisodeNumber int    `json:"episodeNumber"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.engine.GenerateEpisodeScript(r.Context(), req.ProjectID, req.EpisodeNumber)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleGenerateRemaining handles POST /ai/generate-remaining-episodes.
// Episodes generate strictly one at a time; the response reports what
// completed even when a later episode failed.
func (s *Server) handleGenerateRemaining(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"projectId"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	generated, err := s.engine.GenerateAllRemaining(r.Context(), req.ProjectID)
	if err != nil {
		if len(generated) == 0 {
			s.respondPipelineError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"episodeScripts": generated,
			"partial":        true,
		})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"episodeScripts": generated,
	})
}

// handleScriptSuggestions handles POST /ai/script-suggestions
func (s *Server) handleScriptSuggestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"projectId"`
		Content   string `json:"content"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	suggestions, err := s.engine.ScriptSuggestions(r.Context(), req.ProjectID, req.Content)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// handleGenerateAudio handles POST /ai/generate-audio
func (s *Server) handleGenerateAudio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID     string `json:"projectId"`
		EpisodeNumber int    `json:"episodeNumber"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	artifact, err := s.engine.GenerateAudio(r.Context(), req.ProjectID, req.EpisodeNumber)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, artifact)
}

// handleGenerateAudioSegment handles POST /ai/generate-audio-segment
func (s *Server) handleGenerateAudioSegment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID    string `json:"projectId"`
		SegmentText  string `json:"segmentText"`
		SegmentIndex int    `json:"segmentIndex"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	artifact, err := s.engine.GenerateAudioSegment(r.Context(), req.ProjectID, req.SegmentText, req.SegmentIndex)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, artifact)
}
