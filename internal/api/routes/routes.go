package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mocklyai/mockly/internal/api/handlers"
	"github.com/mocklyai/mockly/internal/api/middleware"
)

type Deps struct {
	Auth    *handlers.AuthHandler
	Session *handlers.SessionHandler
	User    *handlers.UserHandler
	Resume  *handlers.ResumeHandler

	JWTSecret      string
	CallbackSecret string
	Metrics        prometheus.Gatherer
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)

	// The callback is authenticated by its per-session token, not a JWT.
	api.POST("/interview/session/:session_id/callback",
		middleware.CallbackAuth(d.CallbackSecret), d.Session.Callback)

	auth := api.Group("/")
	auth.Use(middleware.JWTAuth(d.JWTSecret))

	auth.POST("/interview/session", d.Session.Create)
	auth.GET("/interview/session/:session_id", d.Session.Get)
	auth.GET("/interview/session/:session_id/feedback", d.Session.Feedback)
	auth.POST("/interview/session/:session_id/cancel", d.Session.Cancel)

	auth.GET("/user/profile", d.User.Profile)
	auth.GET("/user/sessions", d.User.Sessions)
	if d.Resume != nil {
		auth.POST("/user/resume", d.Resume.Upload)
	}
}
