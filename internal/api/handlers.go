// Package api provides HTTP handlers for JourneyMap session endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

// createSessionHandler handles POST /sessions.
func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("createSessionHandler invoked", "method", r.Method, "path", r.URL.Path)
	sess := s.mgr.Create()
	writeJSONResponse(w, http.StatusCreated, models.Success(sess.Snapshot()))
}

// getSessionHandler handles GET /sessions/{id}.
func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("getSessionHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess.Snapshot()))
}

// deleteSessionHandler handles DELETE /sessions/{id}.
func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("deleteSessionHandler invoked", "path", r.URL.Path)
	id := r.PathValue("id")
	if err := s.mgr.Delete(id); err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session deleted", nil))
}

// generateHandler handles POST /sessions/{id}/generate.
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("generateHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("generateHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := sess.Submit(req.Prompt); err != nil {
		// The session records the user-facing message; surface it.
		snap := sess.Snapshot()
		msg := snap.Message
		if msg == "" {
			msg = err.Error()
		}
		slog.Warn("generateHandler submit rejected", "sessionID", sess.ID(), "error", err)
		writeJSONResponse(w, statusForError(err), models.Error(msg))
		return
	}
	writeJSONResponse(w, http.StatusAccepted, models.Success(sess.Snapshot()))
}

// cancelHandler handles POST /sessions/{id}/cancel.
func (s *Server) cancelHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("cancelHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	sess.Cancel()
	writeJSONResponse(w, http.StatusOK, models.Success(sess.Snapshot()))
}

// setVariableHandler handles PUT /sessions/{id}/variables.
func (s *Server) setVariableHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("setVariableHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Axis  string `json:"axis"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("setVariableHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := sess.SetVariable(req.Axis, req.Value); err != nil {
		slog.Warn("setVariableHandler rejected", "sessionID", sess.ID(), "axis", req.Axis, "value", req.Value, "error", err)
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess.Snapshot()))
}

// selectProviderHandler handles PUT /sessions/{id}/provider.
func (s *Server) selectProviderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("selectProviderHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Provider models.Provider `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("selectProviderHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := sess.SelectProvider(req.Provider); err != nil {
		slog.Warn("selectProviderHandler rejected", "sessionID", sess.ID(), "provider", req.Provider, "error", err)
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess.Snapshot()))
}

// setAPIKeyHandler handles PUT /sessions/{id}/key.
func (s *Server) setAPIKeyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("setAPIKeyHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Provider models.Provider `json:"provider"`
		APIKey   string          `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("setAPIKeyHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := sess.SetAPIKey(req.Provider, req.APIKey); err != nil {
		slog.Warn("setAPIKeyHandler rejected", "sessionID", sess.ID(), "provider", req.Provider, "error", err)
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}
	// The key itself is never echoed back.
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("API key stored", nil))
}

// uploadBackgroundHandler handles POST /sessions/{id}/background.
func (s *Server) uploadBackgroundHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("uploadBackgroundHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("uploadBackgroundHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Content == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: content"))
		return
	}

	if err := sess.UploadBackground(req.Filename, req.Content); err != nil {
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Background material added", nil))
}
