package service

import (
	"context"
	"sync"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealquest/backend/internal/favorites"
	"github.com/pageza/mealquest/backend/internal/identity"
	"github.com/pageza/mealquest/backend/internal/model"
)

// fakeLookup serves a fixed catalog.
type fakeLookup struct {
	mu      sync.Mutex
	recipes map[string]model.RecipeDetail
	lookups int
}

func newFakeLookup(recipes ...model.RecipeDetail) *fakeLookup {
	f := &fakeLookup{recipes: make(map[string]model.RecipeDetail)}
	for _, r := range recipes {
		f.recipes[r.ID] = r
	}
	return f
}

func (f *fakeLookup) Search(_ context.Context, query string) []model.RecipeSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.RecipeSummary{}
	for _, id := range []string{"52771", "52772", "52773"} {
		if r, ok := f.recipes[id]; ok {
			out = append(out, r.RecipeSummary)
		}
	}
	return out
}

func (f *fakeLookup) Lookup(_ context.Context, id string) *model.RecipeDetail {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	r, ok := f.recipes[id]
	if !ok {
		return nil
	}
	return &r
}

func (f *fakeLookup) Random(ctx context.Context) *model.RecipeDetail {
	return f.Lookup(ctx, "52771")
}

func recipe(id, name string) model.RecipeDetail {
	return model.RecipeDetail{RecipeSummary: model.RecipeSummary{ID: id, Name: name}}
}

func setupRecipeService(t *testing.T, lookup RecipeLookup) *RecipeService {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	reconciler := favorites.NewReconciler(favorites.NewMemoryStore(log), log)
	return NewRecipeService(lookup, reconciler, log)
}

func TestSearchAnnotatesFavorites(t *testing.T) {
	lookup := newFakeLookup(recipe("52771", "Arrabiata"), recipe("52772", "Teriyaki"))
	svc := setupRecipeService(t, lookup)
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, "user1", "52772")
	require.NoError(t, err)

	results := svc.Search(ctx, "user1", "")
	require.Len(t, results, 2)
	assert.False(t, results[0].IsFavorite)
	assert.True(t, results[1].IsFavorite)

	for _, r := range svc.Search(ctx, identity.Guest, "") {
		assert.False(t, r.IsFavorite)
	}
}

func TestDetailAndRandom(t *testing.T) {
	lookup := newFakeLookup(recipe("52771", "Arrabiata"))
	svc := setupRecipeService(t, lookup)
	ctx := context.Background()

	assert.Nil(t, svc.Detail(ctx, identity.Guest, "00000"))

	d := svc.Detail(ctx, identity.Guest, "52771")
	require.NotNil(t, d)
	assert.False(t, d.IsFavorite)

	_, err := svc.ToggleFavorite(ctx, identity.Guest, "52771")
	require.NoError(t, err)
	r := svc.Random(ctx, identity.Guest)
	require.NotNil(t, r)
	assert.True(t, r.IsFavorite)
}

func TestFavoriteRecipesKeepsOrderAndSkipsUnknown(t *testing.T) {
	lookup := newFakeLookup(recipe("1", "One"), recipe("2", "Two"), recipe("3", "Three"))
	svc := setupRecipeService(t, lookup)
	ctx := context.Background()

	for _, id := range []string{"3", "gone", "1", "2"} {
		_, err := svc.ToggleFavorite(ctx, "user1", id)
		require.NoError(t, err)
	}

	favs := svc.FavoriteRecipes(ctx, "user1")
	require.Len(t, favs, 3)
	assert.Equal(t, "3", favs[0].ID)
	assert.Equal(t, "1", favs[1].ID)
	assert.Equal(t, "2", favs[2].ID)
	for _, f := range favs {
		assert.True(t, f.IsFavorite)
	}

	// Unresolved IDs are not dropped from the stored set.
	assert.Equal(t, []string{"3", "gone", "1", "2"}, svc.FavoriteIDs(ctx, "user1"))
}

func TestFavoriteRecipesEmptySkipsCatalog(t *testing.T) {
	lookup := newFakeLookup()
	svc := setupRecipeService(t, lookup)

	assert.Empty(t, svc.FavoriteRecipes(context.Background(), identity.Guest))
	assert.Equal(t, 0, lookup.lookups)
}

func TestClearFavorites(t *testing.T) {
	svc := setupRecipeService(t, newFakeLookup())
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, "user1", "1")
	require.NoError(t, err)
	require.NoError(t, svc.ClearFavorites(ctx, "user1"))
	assert.Empty(t, svc.FavoriteIDs(ctx, "user1"))
}
