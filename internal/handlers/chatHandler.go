package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/api"
)

// ChatHandler godoc
// @Summary      Run one chat turn
// @Description  Retrieves knowledge base context for the message, calls the completion provider and persists both turns. Omitting session_id starts a new session.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest  true  "Message, optional session id and model"
// @Success      200      {object}  api.ChatResponse
// @Failure      402      {object}  api.ErrorResponse  "No active subscription"
// @Failure      404      {object}  api.ErrorResponse  "Unknown or foreign session"
// @Failure      502      {object}  api.ErrorResponse  "Completion provider failure"
// @Security     BearerAuth
// @Router       /api/chat [post]
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		logRH.Warn("Bad Chat Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "message is required")
		return
	}

	claims := requestClaims(r)
	answer, sessionId, err := handlerInstance.orchestrator.Turn(
		r.Context(), claims.Subject, req.Message, req.SessionId, req.Model)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.ChatResponse{Response: answer, SessionId: sessionId})
}

// ListChatSessionsHandler godoc
// @Summary      List the caller's chat sessions
// @Tags         Chat
// @Produce      json
// @Success      200  {array}  chatModel.ChatSession
// @Security     BearerAuth
// @Router       /api/chat/history [get]
func ListChatSessionsHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)
	sessions, err := handlerInstance.orchestrator.ListSessions(r.Context(), claims.Subject)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, sessions)
}

// GetChatSessionHandler godoc
// @Summary      Full message history of one session
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {array}   chatModel.ChatMessage
// @Failure      404  {object}  api.ErrorResponse  "Unknown or foreign session"
// @Security     BearerAuth
// @Router       /api/chat/history/{id} [get]
func GetChatSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)
	sessionId := utils.GetChiURLParam(r, "id")

	messages, err := handlerInstance.orchestrator.SessionMessages(r.Context(), claims.Subject, sessionId)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, messages)
}

// DeleteChatSessionHandler godoc
// @Summary      Delete a session and its messages
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse  "Unknown or foreign session"
// @Security     BearerAuth
// @Router       /api/chat/history/{id} [delete]
func DeleteChatSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)
	sessionId := utils.GetChiURLParam(r, "id")

	if err := handlerInstance.orchestrator.DeleteSession(r.Context(), claims.Subject, sessionId); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Session deleted"})
}
