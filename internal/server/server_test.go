package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podforge/internal/config"
	"podforge/internal/core"
	"podforge/internal/pipeline"
	"podforge/internal/store"
)

func newTestServer(t *testing.T) (*Server, store.ProjectStore) {
	t.Helper()

	projects := store.NewMemoryStore()
	files, err := store.NewFileStore(t.TempDir(), "/audio")
	require.NoError(t, err)

	// No AI providers: absorbing stages run their deterministic fallbacks,
	// propagating stages report unavailability.
	engine := pipeline.NewEngine(nil, nil, nil, files, projects)

	cfg := config.Server{Host: "127.0.0.1", Port: 8080}
	return New(engine, projects, files.Dir(), cfg), projects
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	srv.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)
}

func TestProjectLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	// Create
	resp := doJSON(t, srv, http.MethodPost, "/api/projects", map[string]string{
		"title":  "UPI deep dive",
		"prompt": "Explain how UPI works",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created core.Project
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1.0, created.VoiceSettings.Speed)

	// Get
	resp = doJSON(t, srv, http.MethodGet, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Patch
	resp = doJSON(t, srv, http.MethodPatch, "/api/projects/"+created.ID, map[string]string{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var patched core.Project
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &patched))
	assert.Equal(t, "Renamed", patched.Title)
	assert.Equal(t, "Explain how UPI works", patched.RawPrompt)

	// Delete
	resp = doJSON(t, srv, http.MethodDelete, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = doJSON(t, srv, http.MethodGet, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateProjectRequiresPrompt(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/projects", map[string]string{"title": "No prompt"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "prompt is required", envelope["message"])
}

func TestRefinePromptReturnsStageOutput(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/ai/refine-prompt", map[string]string{
		"prompt": "Explain how UPI works",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var result core.PromptRefinementResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, "Explain how UPI works", result.RefinedPrompt)
	assert.Equal(t, 18, result.SuggestedDuration)
}

func TestRefinePromptValidationEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/ai/refine-prompt", map[string]string{"prompt": ""})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope["message"])
}

func TestGenerateScriptUnavailableProviderIsBadGateway(t *testing.T) {
	srv, projects := newTestServer(t)
	require.NoError(t, projects.CreateProject(context.Background(), &core.Project{
		ID:        "p1",
		RawPrompt: "Explain how UPI works",
	}))

	resp := doJSON(t, srv, http.MethodPost, "/ai/generate-script", map[string]string{
		"projectId": "p1",
	})

	assert.Equal(t, http.StatusBadGateway, resp.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "script generation is unavailable", envelope["message"])
}

func TestMarkEpisodeComplete(t *testing.T) {
	srv, projects := newTestServer(t)
	require.NoError(t, projects.CreateProject(context.Background(), &core.Project{
		ID:        "p1",
		RawPrompt: "a prompt",
		EpisodePlan: &core.EpisodePlanResult{
			IsMultiEpisode: true,
			TotalEpisodes:  2,
			Episodes: []core.Episode{
				{EpisodeNumber: 1, Status: core.EpisodeStatusPlanned},
				{EpisodeNumber: 2, Status: core.EpisodeStatusPlanned},
			},
		},
	}))

	resp := doJSON(t, srv, http.MethodPost, "/api/projects/p1/episodes/2/complete", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var updated core.Project
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, core.EpisodeStatusCompleted, updated.EpisodePlan.Episodes[1].Status)
	assert.Equal(t, core.EpisodeStatusPlanned, updated.EpisodePlan.Episodes[0].Status)
}

func TestMarkEpisodeCompleteUnknownEpisode(t *testing.T) {
	srv, projects := newTestServer(t)
	require.NoError(t, projects.CreateProject(context.Background(), &core.Project{
		ID:        "p1",
		RawPrompt: "a prompt",
		EpisodePlan: &core.EpisodePlanResult{
			TotalEpisodes: 1,
			Episodes:      []core.Episode{{EpisodeNumber: 1}},
		},
	}))

	resp := doJSON(t, srv, http.MethodPost, "/api/projects/p1/episodes/9/complete", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUnknownProjectIsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, route := range []string{"/ai/generate-script", "/ai/analyze-episodes"} {
		resp := doJSON(t, srv, http.MethodPost, route, map[string]string{"projectId": "ghost"})
		assert.Equal(t, http.StatusNotFound, resp.Code, fmt.Sprintf("route %s", route))
	}
}
