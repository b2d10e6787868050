package handlers

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/internal/logger"
)

//go:embed static/index.html
var indexHTML []byte

func Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Fleetwatch is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Ready reports whether the backing store answers.
func (h *Handler) Ready(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			logger.Log.Warn("readiness check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Status is the authenticated probe the dashboard uses to validate a login.
func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	})
}

// MetricsInfo answers agents that still poll /api/metrics.
func MetricsInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Metrics API enabled",
		"timestamp": time.Now().UnixMilli(),
	})
}
