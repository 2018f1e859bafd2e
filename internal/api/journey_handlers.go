// Package api provides journey retrieval and editing handlers.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

// getJourneyHandler handles GET /sessions/{id}/journey.
func (s *Server) getJourneyHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("getJourneyHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	journey, err := sess.Journey()
	if err != nil {
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(journey))
}

// addStageHandler handles POST /sessions/{id}/stages.
func (s *Server) addStageHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("addStageHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	idx, err := sess.AddStage()
	if err != nil {
		slog.Warn("addStageHandler rejected", "sessionID", sess.ID(), "error", err)
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(map[string]int{"index": idx}))
}

// editStageHandler handles POST /sessions/{id}/stages/edit.
func (s *Server) editStageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("editStageHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Index int    `json:"index"`
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("editStageHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := sess.EditStageField(req.Index, req.Field, req.Value); err != nil {
		slog.Warn("editStageHandler rejected", "sessionID", sess.ID(), "index", req.Index, "field", req.Field, "error", err)
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Stage updated", nil))
}

// deleteStageHandler handles POST /sessions/{id}/stages/delete.
func (s *Server) deleteStageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("deleteStageHandler invoked", "path", r.URL.Path)
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("deleteStageHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := sess.DeleteStage(req.Index); err != nil {
		slog.Warn("deleteStageHandler rejected", "sessionID", sess.ID(), "index", req.Index, "error", err)
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Stage deleted", nil))
}

// listJourneysHandler handles GET /journeys?session_id=...&limit=N.
func (s *Server) listJourneysHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("listJourneysHandler invoked", "path", r.URL.Path)
	if s.st == nil {
		writeJSONResponse(w, http.StatusNotImplemented, models.Error("Journey history is not enabled"))
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required parameter: session_id"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid limit parameter"))
			return
		}
		limit = parsed
	}

	records, err := s.st.ListJourneys(r.Context(), sessionID, limit)
	if err != nil {
		slog.Error("listJourneysHandler query failed", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list journeys"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(records))
}
