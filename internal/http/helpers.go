package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library-catalog/internal/pagination"
)

// --- Response Types ---

// ErrorResponse is the body of every 4xx response that carries detail.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: code})
}

// respondNotFound sends a bodiless 404 Not Found response.
func respondNotFound(c *gin.Context) {
	c.AbortWithStatus(http.StatusNotFound)
}

// respondInternalError logs err and sends a bodiless 500 response.
// The cause is never exposed to the client.
func respondInternalError(c *gin.Context, logger *zap.Logger, err error, operation string) {
	logger.Error("Request failed",
		zap.String("operation", operation),
		zap.String("request.id", requestID(c)),
		zap.Error(err))
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondNoContent sends a bodiless 204.
func respondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid_id", "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePageRequest reads page, size, sortBy and direction from the query
// string. Missing values take the pagination defaults; range checks are left
// to the service.
func parsePageRequest(c *gin.Context) (pagination.Request, bool) {
	req := pagination.NewRequest()

	var err error
	if req.Page, err = queryInt(c, "page", req.Page); err != nil {
		respondBadRequest(c, "invalid_page", "page must be an integer")
		return req, false
	}
	if req.Size, err = queryInt(c, "size", req.Size); err != nil {
		respondBadRequest(c, "invalid_size", "size must be an integer")
		return req, false
	}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		req.SortBy = sortBy
	}
	if req.Direction, err = pagination.ParseDirection(c.Query("direction")); err != nil {
		respondBadRequest(c, "invalid_direction", err.Error())
		return req, false
	}
	return req, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return v, nil
}
