package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, requestID(c))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		id := w.Header().Get(requestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("echoes caller id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(requestIDHeader, "abc-123")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}

func TestAccessLogMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(RequestIDMiddleware(), AccessLogMiddleware(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/fail", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.NotEmpty(t, entries[0].ContextMap()["request.id"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(500), entries[1].ContextMap()["status"])
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	router := gin.New()
	router.Use(RecoveryMiddleware(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

func TestCORSMiddleware(t *testing.T) {
	newRouter := func(origins []string) *gin.Engine {
		router := gin.New()
		router.Use(CORSMiddleware(origins))
		router.GET("/api/books", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("allow all", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/books", nil)
		req.Header.Set("Origin", "http://example.com")

		w := httptest.NewRecorder()
		newRouter([]string{"*"}).ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, requestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("allow list", func(t *testing.T) {
		router := newRouter([]string{"http://allowed.test"})

		req := httptest.NewRequest("GET", "/api/books", nil)
		req.Header.Set("Origin", "http://allowed.test")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "http://allowed.test", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest("GET", "/api/books", nil)
		req.Header.Set("Origin", "http://evil.test")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/books", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "PUT")

		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	})
}
