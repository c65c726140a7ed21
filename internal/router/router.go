package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quizgen/quizgen-backend/internal/config"
	"github.com/quizgen/quizgen-backend/internal/handler"
	"github.com/quizgen/quizgen-backend/internal/middleware"
	"github.com/quizgen/quizgen-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Export  *handler.ExportHandler
	APIKey  *handler.APIKeyHandler
	Attempt *handler.AttemptHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// Deps carries what route middlewares need besides handlers.
type Deps struct {
	SessionExists   middleware.SessionExists
	GenerateLimiter *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, deps Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	v1 := router.Group("/api/v1")

	// ─── 1. Sessions ───────────────────────────────────────────────────
	v1.POST("/sessions", middleware.NoStore(), handlers.Session.CreateSession)

	session := v1.Group("/sessions/:id")
	session.Use(middleware.NoStore(), middleware.RequireSession(deps.SessionExists))
	{
		session.GET("", handlers.Session.GetSession)
		session.DELETE("", handlers.Session.ResetSession)

		generate := session.Group("")
		if deps.GenerateLimiter != nil {
			generate.Use(deps.GenerateLimiter.Middleware())
		}
		generate.POST("/generate", handlers.Session.Generate)

		session.GET("/page", handlers.Session.GetPage)
		session.PUT("/page", handlers.Session.GoToPage)
		session.POST("/page/next", handlers.Session.NextPage)
		session.POST("/page/prev", handlers.Session.PrevPage)

		q := session.Group("/questions/:qid")
		{
			q.POST("/select", handlers.Session.SelectOption)
			q.PUT("/text", handlers.Session.SetFillBlankText)
			q.POST("/check", handlers.Session.CheckFillBlank)
			q.POST("/reorder", handlers.Session.Reorder)
			q.PUT("/matches", handlers.Session.SetMatch)
			q.DELETE("/matches", handlers.Session.ResetMatching)
			q.DELETE("/matches/:left", handlers.Session.ClearMatch)
			q.POST("/submit", handlers.Session.SubmitMatching)
		}

		session.POST("/answers/reset", handlers.Session.ResetAnswers)
		session.POST("/review", handlers.Session.EnterReview)
		session.DELETE("/review", handlers.Session.ExitReview)

		session.GET("/score", handlers.Session.GetScore)
		session.GET("/insights", handlers.Session.GetInsights)
		session.GET("/export", handlers.Export.Export)
	}

	// ─── 2. Clients ────────────────────────────────────────────────────
	client := v1.Group("/clients/:client_id")
	client.Use(middleware.NoStore(), middleware.RequireClientID())
	{
		client.GET("/api-key", handlers.APIKey.GetAPIKey)
		client.PUT("/api-key", handlers.APIKey.SaveAPIKey)
		client.DELETE("/api-key", handlers.APIKey.ClearAPIKey)
		client.GET("/attempts", handlers.Attempt.ListAttempts)
	}

	// ─── 3. System ─────────────────────────────────────────────────────
	v1.GET("/system/metrics", handlers.System.SystemMetricsSSE)

	// ─── 4. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireSession(deps.SessionExists))
	{
		ws.GET("/sessions/:id/stream", handlers.WS.SessionStream)
	}

	return router
}
