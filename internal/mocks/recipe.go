package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealquest/backend/internal/model"
)

// MockRecipeLookup is a mock of the recipe catalog client
type MockRecipeLookup struct {
	mock.Mock
}

func (m *MockRecipeLookup) Search(ctx context.Context, query string) []model.RecipeSummary {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.RecipeSummary)
}

func (m *MockRecipeLookup) Lookup(ctx context.Context, id string) *model.RecipeDetail {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.RecipeDetail)
}

func (m *MockRecipeLookup) Random(ctx context.Context) *model.RecipeDetail {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.RecipeDetail)
}
