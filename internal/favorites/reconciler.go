package favorites

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pageza/mealquest/backend/internal/identity"
	"github.com/pageza/mealquest/backend/internal/metrics"
	"github.com/pageza/mealquest/backend/internal/model"
)

var (
	// ErrEmptyRecipeID is returned when a toggle names no recipe.
	ErrEmptyRecipeID = errors.New("recipe id is required")
	// ErrUnavailable is returned when the current favorites cannot be read,
	// so no new status was computed and nothing was written.
	ErrUnavailable = errors.New("favorites store unavailable")
)

// IDSet is a membership view over a favorites sequence.
type IDSet map[string]struct{}

func NewIDSet(ids []string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Annotate marks each summary with whether its ID is in favoriteIDs. The
// input slice is left untouched.
func Annotate(summaries []model.RecipeSummary, favoriteIDs IDSet) []model.AnnotatedSummary {
	out := make([]model.AnnotatedSummary, len(summaries))
	for i, s := range summaries {
		out[i] = model.AnnotatedSummary{
			RecipeSummary: s,
			IsFavorite:    favoriteIDs.Has(s.ID),
		}
	}
	return out
}

// Reconciler applies favorite mutations for an identity through a Store.
// Mutations for the same identity are serialized; different identities
// proceed independently.
type Reconciler struct {
	store Store
	locks *keyedMutex
	log   logrus.FieldLogger
}

func NewReconciler(store Store, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{
		store: store,
		locks: newKeyedMutex(),
		log:   log,
	}
}

// Favorites returns the stored ID sequence for key, empty when the key is
// invalid or the record is unreadable.
func (r *Reconciler) Favorites(ctx context.Context, key identity.Key) []string {
	sk, err := identity.FavoritesKey(key)
	if err != nil {
		r.log.WithError(err).WithField("identity", key).Warn("rejected favorites key")
		return []string{}
	}
	return r.store.Load(ctx, sk)
}

// IDSet is Favorites as a membership set.
func (r *Reconciler) IDSet(ctx context.Context, key identity.Key) IDSet {
	return NewIDSet(r.Favorites(ctx, key))
}

// IsFavorite reports whether recipeID is in key's favorites.
func (r *Reconciler) IsFavorite(ctx context.Context, key identity.Key, recipeID string) bool {
	return r.IDSet(ctx, key).Has(strings.TrimSpace(recipeID))
}

// Toggle flips recipeID's membership in key's favorites and persists the
// result. The returned status is the membership after the flip; when the
// save fails it is returned together with the error so callers can keep
// their optimistic state.
//
// A corrupt record is replaced. A store that cannot be read at all is not
// written to and the error wraps ErrUnavailable; the returned status is then
// meaningless.
func (r *Reconciler) Toggle(ctx context.Context, key identity.Key, recipeID string) (bool, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return false, ErrEmptyRecipeID
	}
	sk, err := identity.FavoritesKey(key)
	if err != nil {
		return false, err
	}

	unlock := r.locks.Lock(sk.String())
	defer unlock()

	ids, err := r.store.Fetch(ctx, sk)
	switch {
	case errors.Is(err, ErrCorrupt):
		r.log.WithError(err).WithField("identity", key).Warn("replacing corrupt favorites record")
		ids = []string{}
	case err != nil:
		metrics.ObserveToggle(false, err)
		r.log.WithError(err).WithField("identity", key).Error("favorites unreadable, toggle refused")
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	next, added := flip(ids, recipeID)
	log := r.log.WithFields(logrus.Fields{"identity": key, "recipe_id": recipeID, "favorite": added})
	err = r.store.Save(ctx, sk, next)
	metrics.ObserveToggle(added, err)
	if err != nil {
		log.WithError(err).Error("failed to persist favorites")
		return added, err
	}
	log.Debug("favorite toggled")
	return added, nil
}

// Clear empties key's favorites.
func (r *Reconciler) Clear(ctx context.Context, key identity.Key) error {
	sk, err := identity.FavoritesKey(key)
	if err != nil {
		return err
	}
	unlock := r.locks.Lock(sk.String())
	defer unlock()
	return r.store.Save(ctx, sk, []string{})
}

// flip removes id if present, otherwise appends it.
func flip(ids []string, id string) ([]string, bool) {
	next := make([]string, 0, len(ids)+1)
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, id)
	}
	return next, !found
}
