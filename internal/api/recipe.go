package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealquest/backend/internal/favorites"
	"github.com/pageza/mealquest/backend/internal/middleware"
	"github.com/pageza/mealquest/backend/internal/service"
	"github.com/pageza/mealquest/backend/internal/types"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
}

func NewRecipeHandler(recipeService service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.SearchRecipes)
		recipes.GET("/random", h.RandomRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("/:id/favorite/toggle", h.ToggleFavorite)
	}

	favs := router.Group("/favorites")
	{
		favs.GET("", h.ListFavorites)
		favs.GET("/ids", h.ListFavoriteIDs)
		favs.DELETE("", h.ClearFavorites)
	}
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	key := middleware.IdentityKey(c)
	results := h.recipeService.Search(c.Request.Context(), key, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"recipes": results})
}

func (h *RecipeHandler) RandomRecipe(c *gin.Context) {
	recipe := h.recipeService.Random(c.Request.Context(), middleware.IdentityKey(c))
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recipe available"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe := h.recipeService.Detail(c.Request.Context(), middleware.IdentityKey(c), c.Param("id"))
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// ToggleFavorite flips the recipe's favorite status. When the new state
// cannot be saved the computed status is still returned with a 503 so the
// client can keep or revert its optimistic update. When the current state
// cannot be read there is no status to report and is_favorite is omitted.
func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe id is required"})
		return
	}

	isFavorite, err := h.recipeService.ToggleFavorite(c.Request.Context(), middleware.IdentityKey(c), id)
	if errors.Is(err, favorites.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"id": id, "error": "favorites are unavailable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, types.ToggleFavoriteResponse{
			ID:         id,
			IsFavorite: isFavorite,
			Error:      "failed to save favorites",
		})
		return
	}
	c.JSON(http.StatusOK, types.ToggleFavoriteResponse{ID: id, IsFavorite: isFavorite})
}

func (h *RecipeHandler) ListFavorites(c *gin.Context) {
	recipes := h.recipeService.FavoriteRecipes(c.Request.Context(), middleware.IdentityKey(c))
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) ListFavoriteIDs(c *gin.Context) {
	ids := h.recipeService.FavoriteIDs(c.Request.Context(), middleware.IdentityKey(c))
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func (h *RecipeHandler) ClearFavorites(c *gin.Context) {
	if err := h.recipeService.ClearFavorites(c.Request.Context(), middleware.IdentityKey(c)); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to clear favorites"})
		return
	}
	c.Status(http.StatusNoContent)
}
