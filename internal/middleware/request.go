package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/fleetwatch/internal/logger"
	"github.com/monocle-dev/fleetwatch/internal/types"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses a caller supplied X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		ctx.Set(types.ContextRequestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		status := ctx.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		logger.Log.Log(ctx.Request.Context(), level, "request",
			"request_id", ctx.GetString(types.ContextRequestIDKey),
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ctx.ClientIP(),
		)
	}
}
