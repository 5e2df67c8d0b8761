package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/database"
	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/service"
)

// Services bundles what the handlers depend on.
type Services struct {
	Users       *service.UserService
	Auth        *service.AuthService
	Tags        *service.TagService
	Ingredients *service.IngredientService
	Recipes     *service.RecipeService
}

// HealthCheck reports whether the database answers a ping.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// RegisterRoutes registers all /api/v1 routes. A nil or disabled limiter
// lets every request through.
func RegisterRoutes(router *gin.Engine, svc Services, limiter *middleware.RateLimiter) {
	users := NewUserHandler(svc.Users, svc.Auth)
	requireAuth := middleware.AuthMiddleware(svc.Auth)

	v1 := router.Group("/api/v1")

	user := v1.Group("/user")
	{
		user.POST("/create", limiter.Middleware(middleware.ByClientIP), users.Create)
		user.POST("/token", limiter.Middleware(middleware.ByClientIP), users.Token)

		me := user.Group("/me", requireAuth)
		me.GET("", users.Me)
		me.PUT("", users.UpdateMe)
		me.PATCH("", users.UpdateMe)
	}

	recipe := v1.Group("/recipe", requireAuth)
	NewTagHandler(svc.Tags).RegisterRoutes(recipe.Group("/tags"))
	NewIngredientHandler(svc.Ingredients).RegisterRoutes(recipe.Group("/ingredients"))
	NewRecipeHandler(svc.Recipes).RegisterRoutes(recipe.Group("/recipes"), limiter.Middleware(middleware.ByPrincipal))
}
