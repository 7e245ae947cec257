package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/mealquest/backend/internal/favorites"
	"github.com/pageza/mealquest/backend/internal/identity"
	"github.com/pageza/mealquest/backend/internal/model"
)

// hydrateConcurrency bounds parallel catalog lookups for the favorites list.
const hydrateConcurrency = 4

// RecipeService joins catalog results with the caller's favorites.
type RecipeService struct {
	lookup    RecipeLookup
	favorites *favorites.Reconciler
	log       logrus.FieldLogger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(lookup RecipeLookup, reconciler *favorites.Reconciler, log logrus.FieldLogger) *RecipeService {
	return &RecipeService{
		lookup:    lookup,
		favorites: reconciler,
		log:       log.WithField("component", "recipes"),
	}
}

// Search returns catalog matches for query annotated with key's favorites.
func (s *RecipeService) Search(ctx context.Context, key identity.Key, query string) []model.AnnotatedSummary {
	results := s.lookup.Search(ctx, query)
	return favorites.Annotate(results, s.favorites.IDSet(ctx, key))
}

// Detail returns one recipe, or nil when the catalog has no such ID.
func (s *RecipeService) Detail(ctx context.Context, key identity.Key, id string) *model.AnnotatedDetail {
	return s.annotateDetail(ctx, key, s.lookup.Lookup(ctx, id))
}

// Random returns a random recipe, or nil when the catalog is unavailable.
func (s *RecipeService) Random(ctx context.Context, key identity.Key) *model.AnnotatedDetail {
	return s.annotateDetail(ctx, key, s.lookup.Random(ctx))
}

func (s *RecipeService) annotateDetail(ctx context.Context, key identity.Key, d *model.RecipeDetail) *model.AnnotatedDetail {
	if d == nil {
		return nil
	}
	return &model.AnnotatedDetail{
		RecipeDetail: *d,
		IsFavorite:   s.favorites.IsFavorite(ctx, key, d.ID),
	}
}

// FavoriteRecipes looks up every stored favorite and returns the ones the
// catalog still knows, in stored order. IDs that no longer resolve stay in
// the stored set.
func (s *RecipeService) FavoriteRecipes(ctx context.Context, key identity.Key) []model.AnnotatedSummary {
	ids := s.favorites.Favorites(ctx, key)
	found := make([]*model.RecipeDetail, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			found[i] = s.lookup.Lookup(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.AnnotatedSummary, 0, len(ids))
	for i, d := range found {
		if d == nil {
			s.log.WithFields(logrus.Fields{"identity": key, "recipe_id": ids[i]}).Debug("favorite not resolved")
			continue
		}
		out = append(out, model.AnnotatedSummary{RecipeSummary: d.RecipeSummary, IsFavorite: true})
	}
	return out
}

// FavoriteIDs returns key's stored favorites.
func (s *RecipeService) FavoriteIDs(ctx context.Context, key identity.Key) []string {
	return s.favorites.Favorites(ctx, key)
}

// ToggleFavorite flips recipeID for key. See favorites.Reconciler.Toggle.
func (s *RecipeService) ToggleFavorite(ctx context.Context, key identity.Key, recipeID string) (bool, error) {
	return s.favorites.Toggle(ctx, key, recipeID)
}

// ClearFavorites empties key's favorites.
func (s *RecipeService) ClearFavorites(ctx context.Context, key identity.Key) error {
	return s.favorites.Clear(ctx, key)
}
