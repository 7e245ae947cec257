package service

import (
	"context"

	"github.com/pageza/mealquest/backend/internal/identity"
	"github.com/pageza/mealquest/backend/internal/model"
	"github.com/pageza/mealquest/backend/internal/models"
	"github.com/pageza/mealquest/backend/internal/types"
)

// RecipeLookup is the catalog the recipe service reads from. Failures are
// reported as empty results.
type RecipeLookup interface {
	Search(ctx context.Context, query string) []model.RecipeSummary
	Lookup(ctx context.Context, id string) *model.RecipeDetail
	Random(ctx context.Context) *model.RecipeDetail
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Guest(ctx context.Context) (userID string, token string, err error)
	RequestPasswordReset(ctx context.Context, email string) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines the interface for recipe browsing and favorites
type IRecipeService interface {
	Search(ctx context.Context, key identity.Key, query string) []model.AnnotatedSummary
	Detail(ctx context.Context, key identity.Key, id string) *model.AnnotatedDetail
	Random(ctx context.Context, key identity.Key) *model.AnnotatedDetail
	FavoriteRecipes(ctx context.Context, key identity.Key) []model.AnnotatedSummary
	FavoriteIDs(ctx context.Context, key identity.Key) []string
	ToggleFavorite(ctx context.Context, key identity.Key, recipeID string) (bool, error)
	ClearFavorites(ctx context.Context, key identity.Key) error
}
