package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-variability/internal/config"
	"github.com/stemsi/exstem-variability/internal/handler"
	"github.com/stemsi/exstem-variability/internal/middleware"
	"github.com/stemsi/exstem-variability/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Health      *handler.HealthHandler
	Generation  *handler.GenerationHandler
	Variability *handler.VariabilityHandler
	Serde       *handler.SerdeHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The returned limiter must be stopped on shutdown.
func SetupRouter(handlers *Handlers, cfg *config.Config) (*gin.Engine, *middleware.RateLimiter) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if gin.Mode() != gin.TestMode {
		router.Use(gin.Logger())
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept-Encoding", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Compression(cfg.BrotliMinLength, "/health"))

	router.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// Health check.
	router.GET("/health", handlers.Health.Health)

	// Analysis hits both exam databases; limit it per IP.
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	// ─── 1. Exam Group ─────────────────────────────────────────────────
	exams := router.Group("/api/v1/exams/:exam_id")
	{
		exams.GET("/generations/:environment", handlers.Generation.ListGenerations)

		exams.GET("/variability",
			limiter.Middleware(),
			handlers.Variability.GetReport,
		)
		exams.POST("/variability/refresh",
			limiter.Middleware(),
			middleware.NoStore(),
			handlers.Variability.RefreshReport,
		)
	}

	// ─── 2. Stateless Analysis Group ───────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())
	{
		api.POST("/variability", limiter.Middleware(), handlers.Variability.Analyze)

		serdeGroup := api.Group("/serde")
		serdeGroup.POST("/application", handlers.Serde.ToApplication)
		serdeGroup.POST("/wire", handlers.Serde.ToWire)
	}

	return router, limiter
}
