package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/cbpricey/Motion-Industries/internal/http/handlers"
	httpMW "github.com/cbpricey/Motion-Industries/internal/http/middleware"
	"github.com/cbpricey/Motion-Industries/internal/observability"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler      *httpH.AuthHandler
	UserHandler      *httpH.UserHandler
	CandidateHandler *httpH.CandidateHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
			protected.GET("/me", cfg.AuthHandler.GetMe)
		}

		// Candidates
		if cfg.CandidateHandler != nil {
			protected.GET("/candidates", cfg.CandidateHandler.List)
			protected.GET("/candidates/facets", cfg.CandidateHandler.Facets)
			protected.GET("/candidates/:id", cfg.CandidateHandler.Get)
			protected.PATCH("/candidates/:id", cfg.CandidateHandler.Review)
		}

		// User management (admin only)
		if cfg.UserHandler != nil && cfg.AuthMiddleware != nil {
			admin := protected.Group("/users")
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
			admin.GET("", cfg.UserHandler.List)
			admin.POST("", cfg.UserHandler.Create)
			admin.PATCH("/:id", cfg.UserHandler.Update)
			admin.DELETE("/:id", cfg.UserHandler.Delete)
		}
	}

	return r
}
