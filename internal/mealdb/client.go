// Package mealdb is a fail-soft client for TheMealDB recipe catalog.
package mealdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/pageza/mealquest/backend/internal/metrics"
	"github.com/pageza/mealquest/backend/internal/model"
)

const (
	DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"
	DefaultTimeout = 10 * time.Second

	// maxIngredients is the number of strIngredientN/strMeasureN slots.
	maxIngredients = 20
	maxBodyBytes   = 4 << 20
)

var errMalformed = errors.New("malformed catalog response")

// Config configures a Client. Zero values fall back to defaults; a zero
// RatePerSecond disables client-side throttling.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// Client looks recipes up in the catalog. Transport and parse failures are
// logged and surface as empty results.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		log:        log.WithField("component", "mealdb"),
	}
}

// Search returns summaries whose name matches query. A blank query matches
// nothing and never reaches the catalog.
func (c *Client) Search(ctx context.Context, query string) []model.RecipeSummary {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.RecipeSummary{}
	}
	meals, err := c.get(ctx, "search.php", url.Values{"s": {query}})
	if err != nil {
		c.log.WithError(err).WithField("query", query).Warn("recipe search failed")
		return []model.RecipeSummary{}
	}
	out := make([]model.RecipeSummary, 0, len(meals))
	for _, m := range meals {
		if s, ok := parseSummary(m); ok {
			out = append(out, s)
		}
	}
	return out
}

// Lookup returns the recipe with the given ID, or nil.
func (c *Client) Lookup(ctx context.Context, id string) *model.RecipeDetail {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	meals, err := c.get(ctx, "lookup.php", url.Values{"i": {id}})
	if err != nil {
		c.log.WithError(err).WithField("recipe_id", id).Warn("recipe lookup failed")
		return nil
	}
	return firstDetail(meals)
}

// Random returns one random recipe, or nil.
func (c *Client) Random(ctx context.Context) *model.RecipeDetail {
	meals, err := c.get(ctx, "random.php", nil)
	if err != nil {
		c.log.WithError(err).Warn("random recipe failed")
		return nil
	}
	return firstDetail(meals)
}

// get fetches path and returns the elements of the "meals" array. A null
// array is an empty result, not an error.
func (c *Client) get(ctx context.Context, path string, params url.Values) (meals []gjson.Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCatalog(path, time.Since(start), err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	endpoint := c.baseURL + "/" + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errMalformed
	}
	result := gjson.GetBytes(body, "meals")
	switch {
	case !result.Exists(), result.Type == gjson.Null:
		return nil, nil
	case !result.IsArray():
		return nil, errMalformed
	}
	return result.Array(), nil
}

func firstDetail(meals []gjson.Result) *model.RecipeDetail {
	for _, m := range meals {
		if d, ok := parseDetail(m); ok {
			return &d
		}
	}
	return nil
}

func parseSummary(m gjson.Result) (model.RecipeSummary, bool) {
	if !m.IsObject() {
		return model.RecipeSummary{}, false
	}
	s := model.RecipeSummary{
		ID:           strings.TrimSpace(m.Get("idMeal").String()),
		Name:         strings.TrimSpace(m.Get("strMeal").String()),
		ThumbnailURL: strings.TrimSpace(m.Get("strMealThumb").String()),
		Area:         strings.TrimSpace(m.Get("strArea").String()),
		Category:     strings.TrimSpace(m.Get("strCategory").String()),
	}
	return s, s.ID != ""
}

func parseDetail(m gjson.Result) (model.RecipeDetail, bool) {
	summary, ok := parseSummary(m)
	if !ok {
		return model.RecipeDetail{}, false
	}
	d := model.RecipeDetail{
		RecipeSummary: summary,
		Instructions:  strings.TrimSpace(m.Get("strInstructions").String()),
		Tags:          splitTags(m.Get("strTags").String()),
		YouTubeURL:    strings.TrimSpace(m.Get("strYoutube").String()),
		SourceURL:     strings.TrimSpace(m.Get("strSource").String()),
		Ingredients:   []model.Ingredient{},
	}
	for i := 1; i <= maxIngredients; i++ {
		name := strings.TrimSpace(m.Get(fmt.Sprintf("strIngredient%d", i)).String())
		if name == "" {
			continue
		}
		d.Ingredients = append(d.Ingredients, model.Ingredient{
			Name:    name,
			Measure: strings.TrimSpace(m.Get(fmt.Sprintf("strMeasure%d", i)).String()),
		})
	}
	return d, true
}

func splitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
