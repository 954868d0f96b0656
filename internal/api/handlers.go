// Package api provides HTTP handlers for CoursePilot endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// turnRequest is the body of POST /messages.
type turnRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// turnResponse is the result payload of POST /messages.
type turnResponse struct {
	ConversationID string            `json:"conversation_id"`
	Reply          string            `json:"reply"`
	Ready          bool              `json:"ready"`
	Decision       models.Decision   `json:"decision,omitempty"`
	Action         models.ActionKind `json:"action,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty"`
}

// messagesHandler processes one conversation message (POST /messages).
func (s *Server) messagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.messagesHandler: processing message request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.messagesHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.ConversationID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: conversation_id"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: message"))
		return
	}

	reply, result, err := s.respHandler.ProcessMessage(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		slog.Error("Server.messagesHandler: turn failed", "conversationID", req.ConversationID, "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}

	resp := turnResponse{
		ConversationID: req.ConversationID,
		Reply:          reply,
		Ready:          result.Ready,
		Decision:       result.Decision,
		Action:         result.Action,
		Parameters:     result.Parameters,
	}
	slog.Info("Server.messagesHandler: turn processed", "conversationID", req.ConversationID, "ready", result.Ready, "decision", result.Decision)
	writeJSONResponse(w, http.StatusOK, models.Success(resp))
}

// conversationHandler inspects or cancels the ongoing action for one
// conversation (GET or DELETE /conversations/{id}).
func (s *Server) conversationHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Conversation not found"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		ongoing, ok := s.engine.Store().Get(id)
		if !ok {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No ongoing action for conversation"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(ongoing))
	case http.MethodDelete:
		s.engine.Cancel(id)
		slog.Info("Server.conversationHandler: conversation cancelled", "conversationID", id)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Conversation cancelled", nil))
	default:
		w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodDelete}, ", "))
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// turnsHandler returns the turn audit log (GET /turns?conversation_id=...).
func (s *Server) turnsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	conversationID := r.URL.Query().Get("conversation_id")
	records, err := s.st.GetTurnRecords(conversationID)
	if err != nil {
		slog.Error("Server.turnsHandler: failed to fetch turn records", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch turn records"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(records))
}

// healthHandler reports liveness (GET /health).
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("ok", nil))
}
