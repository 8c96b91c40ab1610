package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ginRequestID reads the request ID the RequestID middleware stored, or ""
// before that middleware has run.
func ginRequestID(c *gin.Context) string {
	requestID, _ := c.Get("request_id")
	id, _ := requestID.(string)
	return id
}

// GinMiddleware returns a gin middleware that logs every request once it
// completes. The request-scoped logger is stored both in the gin context and
// in the request's context.Context, so services reached through the handler
// can use logger.L(ctx).
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		query := c.Request.URL.RawQuery
		requestID := ginRequestID(c)

		reqLogger := logger.With(
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		c.Set("logger", reqLogger)
		ctx := WithContext(c.Request.Context(), reqLogger)
		if requestID != "" {
			ctx, _ = WithRequestID(ctx, reqLogger, requestID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logCompletedRequest(c, reqLogger, start, query)
	}
}

func logCompletedRequest(c *gin.Context, reqLogger *zap.Logger, start time.Time, query string) {
	status := c.Writer.Status()

	fields := make([]zap.Field, 0, 7)
	fields = append(fields,
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("body_size", c.Writer.Size()),
	)
	if query != "" {
		fields = append(fields, zap.String("query", query))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}

	switch {
	case status >= 500:
		reqLogger.Error("http request", fields...)
	case status >= 400:
		reqLogger.Warn("http request", fields...)
	default:
		reqLogger.Info("http request", fields...)
	}
}

// Recovery returns a gin middleware that recovers from handler panics, logs
// the stack and answers 500.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.String("request_id", ginRequestID(c)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger retrieves the request-scoped logger from the gin context, a
// no-op logger when the middleware did not run.
func GetGinLogger(c *gin.Context) *zap.Logger {
	stored, exists := c.Get("logger")
	if !exists {
		return zap.NewNop()
	}
	if l, ok := stored.(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
