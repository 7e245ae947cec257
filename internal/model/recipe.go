package model

// RecipeSummary is the display projection of a catalog recipe.
type RecipeSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Area         string `json:"area"`
	Category     string `json:"category"`
}

// AnnotatedSummary is a RecipeSummary with the caller's favorite status.
type AnnotatedSummary struct {
	RecipeSummary
	IsFavorite bool `json:"is_favorite"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// RecipeDetail is the full catalog record for a single recipe.
type RecipeDetail struct {
	RecipeSummary
	Instructions string       `json:"instructions"`
	Tags         []string     `json:"tags"`
	YouTubeURL   string       `json:"youtube_url,omitempty"`
	SourceURL    string       `json:"source_url,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// AnnotatedDetail is a RecipeDetail with the caller's favorite status.
type AnnotatedDetail struct {
	RecipeDetail
	IsFavorite bool `json:"is_favorite"`
}
