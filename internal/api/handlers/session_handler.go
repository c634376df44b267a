package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mocklyai/mockly/internal/services"
	"github.com/mocklyai/mockly/internal/utils"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// Create persists a session and queues the configuration for the workflow
// webhook. The response never waits on the webhook.
func (h *SessionHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var cfg services.InterviewConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Create", "invalid request body", err))
		return
	}

	session, err := h.svc.Create(c.Request.Context(), userID, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateSessionResponse{SessionID: session.ID})
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	status, err := h.svc.Get(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type CancelResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if err := h.svc.Cancel(c.Request.Context(), userID, sessionID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CancelResponse{Success: true, SessionID: sessionID})
}

func (h *SessionHandler) Feedback(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rep, err := h.svc.FeedbackReport(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Callback is invoked by the workflow engine, not by browsers. Auth happens
// in middleware.CallbackAuth.
func (h *SessionHandler) Callback(c *gin.Context) {
	var payload services.CallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Callback", "invalid request body", err))
		return
	}

	if err := h.svc.ApplyCallback(c.Request.Context(), c.Param("session_id"), payload); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
