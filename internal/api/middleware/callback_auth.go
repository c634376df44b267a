package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mocklyai/mockly/internal/utils"
)

// CallbackAuth guards the workflow callback route. The workflow engine gets
// a per-session token inside the outgoing webhook payload and must echo it
// back in X-Callback-Token; a token for one session opens no other.
func CallbackAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("session_id")
		token := c.GetHeader("X-Callback-Token")

		if sessionID == "" || token == "" || !utils.VerifyCallbackToken(secret, sessionID, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid callback token",
			})
			return
		}
		c.Next()
	}
}
