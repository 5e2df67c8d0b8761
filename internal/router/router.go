package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/config"
	"github.com/pageza/recipe-app/backend/internal/api"
	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/validation"
)

// Deps holds what the router wires into handlers. Redis may be nil.
type Deps struct {
	Config   *config.Config
	Log      *slog.Logger
	DB       *gorm.DB
	Redis    *redis.Client
	Services api.Services
}

// SetupRouter configures the application routes
func SetupRouter(d Deps) *gin.Engine {
	if d.Config.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Setup()

	router := gin.New()
	router.MaxMultipartMemory = api.MaxImageBytes
	router.Use(
		middleware.Recovery(d.Log),
		middleware.RequestLogger(d.Log),
		middleware.CORS(d.Config.AllowedOrigins),
		middleware.ErrorHandler(d.Log),
	)

	router.GET("/health", api.HealthCheck(d.DB))

	if d.Config.StorageBackend == config.StorageLocal {
		router.Static(mediaPath(d.Config.MediaURL), d.Config.MediaRoot)
	}

	limiter := middleware.NewRateLimiter(d.Redis, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     d.Config.RateLimitPerMinute,
		KeyPrefix: "rate_limit",
	}, d.Log)
	api.RegisterRoutes(router, d.Services, limiter)

	return router
}

func mediaPath(mediaURL string) string {
	p := strings.TrimRight(mediaURL, "/")
	if p == "" || strings.Contains(p, "://") {
		return "/media"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
