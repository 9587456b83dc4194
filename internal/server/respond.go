package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"podforge/internal/pipeline"
	"podforge/internal/store"
)

// errorResponse is the error envelope every non-200 response carries.
type errorResponse struct {
	Message string `json:"message"`
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

// respondError writes the error envelope with a display-safe message.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Message: message})
}

// respondPipelineError maps a pipeline or store error to a status code and
// the display-safe envelope. Raw provider errors never reach the client.
func (s *Server) respondPipelineError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "project not found")
		return
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		status := http.StatusBadGateway
		if stageErr.Validation {
			status = http.StatusBadRequest
		}
		s.respondError(w, status, stageErr.Message)
		return
	}

	s.log.Error("Unhandled pipeline error", "error", err)
	s.respondError(w, http.StatusInternalServerError, "internal error")
}

// decodeBody parses a JSON request body into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
