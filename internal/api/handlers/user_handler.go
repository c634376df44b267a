package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mocklyai/mockly/internal/services"
)

type UserHandler struct {
	users    services.UserService
	sessions services.SessionService
}

func NewUserHandler(users services.UserService, sessions services.SessionService) *UserHandler {
	return &UserHandler{users: users, sessions: sessions}
}

type ProfileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	u, err := h.users.Profile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

func (h *UserHandler) Sessions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.sessions.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
