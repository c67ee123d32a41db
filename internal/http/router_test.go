package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-catalog/internal/database/books"
	"github.com/mrlokans/library-catalog/internal/metrics"
	"github.com/mrlokans/library-catalog/internal/services"
)

func TestNewRouter(t *testing.T) {
	db, cleanup := setupHealthTestDB(t)
	defer cleanup()

	router := NewRouter(RouterConfig{
		Catalog:            services.NewCatalogService(books.NewRepository(db.DB)),
		Database:           db,
		Metrics:            metrics.New(),
		CORSAllowedOrigins: []string{"*"},
		Version:            "test",
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		return w
	}

	t.Run("books api is mounted", func(t *testing.T) {
		w := get("/api/books")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	})

	t.Run("health", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get("/health").Code)
		assert.Equal(t, http.StatusOK, get("/ping").Code)
	})

	t.Run("metrics include served routes", func(t *testing.T) {
		get("/api/books/paginated")

		w := get("/metrics")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `path="/api/books/paginated"`)
	})

	t.Run("snapshot routes are absent without a queue", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/api/snapshots", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
