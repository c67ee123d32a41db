package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSnapshotQueue struct {
	mock.Mock
}

func (m *mockSnapshotQueue) EnqueueExport(ctx context.Context, format string) (string, error) {
	args := m.Called(format)
	return args.String(0), args.Error(1)
}

func (m *mockSnapshotQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	args := m.Called(taskID)
	return args.Get(0).(backlite.TaskStatus), args.Error(1)
}

func snapshotsRouter(queue SnapshotQueue) *gin.Engine {
	controller := NewSnapshotsController(queue, nil)
	router := gin.New()
	router.POST("/api/snapshots", controller.CreateSnapshot)
	router.GET("/api/snapshots/tasks/:id", controller.GetSnapshotTask)
	return router
}

func TestSnapshotsController_CreateSnapshot(t *testing.T) {
	t.Run("default format", func(t *testing.T) {
		queue := new(mockSnapshotQueue)
		queue.On("EnqueueExport", "").Return("task-1", nil)

		w := httptest.NewRecorder()
		snapshotsRouter(queue).ServeHTTP(w, httptest.NewRequest("POST", "/api/snapshots", nil))

		require.Equal(t, http.StatusAccepted, w.Code)
		info := decode[TaskInfo](t, w)
		assert.Equal(t, "task-1", info.ID)
		assert.Equal(t, "export_catalog", info.Queue)
		assert.Equal(t, "pending", info.Status)
		queue.AssertExpectations(t)
	})

	t.Run("format from body", func(t *testing.T) {
		queue := new(mockSnapshotQueue)
		queue.On("EnqueueExport", "yaml").Return("task-2", nil)

		req := httptest.NewRequest("POST", "/api/snapshots", strings.NewReader(`{"format":"yaml"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		snapshotsRouter(queue).ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		queue.AssertExpectations(t)
	})

	t.Run("format from query", func(t *testing.T) {
		queue := new(mockSnapshotQueue)
		queue.On("EnqueueExport", "json").Return("task-3", nil)

		w := httptest.NewRecorder()
		snapshotsRouter(queue).ServeHTTP(w, httptest.NewRequest("POST", "/api/snapshots?format=json", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		queue.AssertExpectations(t)
	})

	t.Run("unknown format", func(t *testing.T) {
		queue := new(mockSnapshotQueue)

		w := httptest.NewRecorder()
		snapshotsRouter(queue).ServeHTTP(w, httptest.NewRequest("POST", "/api/snapshots?format=csv", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		queue.AssertNotCalled(t, "EnqueueExport", mock.Anything)
	})

	t.Run("queue failure", func(t *testing.T) {
		queue := new(mockSnapshotQueue)
		queue.On("EnqueueExport", "").Return("", errors.New("queue closed"))

		w := httptest.NewRecorder()
		snapshotsRouter(queue).ServeHTTP(w, httptest.NewRequest("POST", "/api/snapshots", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestSnapshotsController_GetSnapshotTask(t *testing.T) {
	queue := new(mockSnapshotQueue)
	queue.On("Status", "done").Return(backlite.TaskStatusSuccess, nil)
	queue.On("Status", "gone").Return(backlite.TaskStatusNotFound, nil)
	queue.On("Status", "broken").Return(backlite.TaskStatusNotFound, errors.New("db locked"))
	router := snapshotsRouter(queue)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/snapshots/tasks/done", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode[TaskInfo](t, w).Status)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/snapshots/tasks/gone", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/snapshots/tasks/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
