//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pageza/mealquest/backend/config"
	"github.com/pageza/mealquest/backend/internal/server"
	"github.com/pageza/mealquest/backend/internal/testdb"
)

const mealJSON = `{"meals":[{"idMeal":"52772","strMeal":"Teriyaki Chicken Casserole","strArea":"Japanese","strCategory":"Chicken","strMealThumb":"https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg"}]}`

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func fakeMealDB(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search.php", "/random.php":
			_, _ = w.Write([]byte(mealJSON))
		case "/lookup.php":
			if r.URL.Query().Get("i") == "52772" {
				_, _ = w.Write([]byte(mealJSON))
				return
			}
			_, _ = w.Write([]byte(`{"meals":null}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newServer(t *testing.T, backend string) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testdb.SetupTestDB(t).Config
	cfg.FavoritesBackend = backend
	cfg.MealDBBaseURL = fakeMealDB(t).URL
	cfg.RateLimit = 1000
	cfg.RedisURL = startRedis(t)

	log, _ := logtest.NewNullLogger()
	srv, err := server.New(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestFavoritesFlow(t *testing.T) {
	for _, backend := range []string{config.FavoritesRedis, config.FavoritesSQL} {
		t.Run(backend, func(t *testing.T) {
			h := newServer(t, backend)

			w := do(t, h, http.MethodPost, "/api/v1/auth/register", "", `{"email":"cook@example.com","password":"secret1"}`)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			var auth struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))

			w = do(t, h, http.MethodPost, "/api/v1/recipes/52772/favorite/toggle", auth.Token, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"id":"52772","is_favorite":true}`, w.Body.String())

			w = do(t, h, http.MethodGet, "/api/v1/recipes?q=chicken", auth.Token, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"is_favorite":true`)

			// The guest identity has its own set.
			w = do(t, h, http.MethodGet, "/api/v1/favorites/ids", "", "")
			assert.JSONEq(t, `{"ids":[]}`, w.Body.String())

			w = do(t, h, http.MethodGet, "/api/v1/favorites", auth.Token, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "Teriyaki Chicken Casserole")

			w = do(t, h, http.MethodPost, "/api/v1/recipes/52772/favorite/toggle", auth.Token, "")
			assert.JSONEq(t, `{"id":"52772","is_favorite":false}`, w.Body.String())

			w = do(t, h, http.MethodGet, "/health", "", "")
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
