package http

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request.id"
)

// RequestIDMiddleware echoes the caller's X-Request-Id or generates one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLogMiddleware logs one line per request after it completes.
func AccessLogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request.id", requestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("access", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("access", fields...)
		default:
			logger.Info("access", fields...)
		}
	}
}

// RecoveryMiddleware turns a handler panic into a bodiless 500 and logs the stack.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.String("request.id", requestID(c)),
					zap.Any("error", err),
					zap.ByteString("stack", debug.Stack()))
				if !c.Writer.Written() {
					c.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// CORSMiddleware allows cross-origin calls from the given origins; "*" or an
// empty list allows any origin. Preflight requests are answered directly.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", strings.Join([]string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
			}, ", "))
			c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, "+requestIDHeader)
			c.Header("Access-Control-Expose-Headers", requestIDHeader)
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
