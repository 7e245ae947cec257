package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/mealquest/backend/internal/middleware"
	"github.com/pageza/mealquest/backend/internal/service"
)

// SetupAPI mounts the v1 API on router. extra middleware runs after
// identity resolution on every identity-scoped route.
func SetupAPI(router *gin.Engine, authService service.IAuthService, recipeService service.IRecipeService, extra ...gin.HandlerFunc) {
	v1 := router.Group("/api/v1")

	authHandler := NewAuthHandler(authService)
	authHandler.RegisterRoutes(v1)

	scoped := v1.Group("")
	scoped.Use(middleware.Identity(authService))
	scoped.Use(extra...)
	{
		authHandler.RegisterIdentityRoutes(scoped)
		NewRecipeHandler(recipeService).RegisterRoutes(scoped)
	}
}
