package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/internal/logger"
	"github.com/monocle-dev/fleetwatch/internal/types"
	"github.com/monocle-dev/fleetwatch/internal/utils"
)

const (
	sourceHeartbeat = "heartbeat"
	sourceUpload    = "upload"
)

func (h *Handler) Register(ctx *gin.Context) {
	var req types.RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("failed to bind register request", "err", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.fleet.Register(ctx.Request.Context(), req)
	if err != nil {
		writeError(ctx, err, "Registration failed")
		return
	}

	h.metrics.IncRegistrations()

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"message": "Server registered",
	})
}

func (h *Handler) Heartbeat(ctx *gin.Context) {
	timestamp, ok := h.ingest(ctx, sourceHeartbeat, "Heartbeat update failed")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": timestamp,
	})
}

func (h *Handler) Upload(ctx *gin.Context) {
	timestamp, ok := h.ingest(ctx, sourceUpload, "Upload failed")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Data uploaded",
		"timestamp": timestamp,
	})
}

// ingest is shared by both report entry points. It writes the error response
// itself and reports false when the caller should stop.
func (h *Handler) ingest(ctx *gin.Context, source, failure string) (int64, bool) {
	start := time.Now()

	var req types.ReportRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("failed to bind report", "source", source, "err", err)
		h.metrics.ObserveReport(source, "bad_request", time.Since(start))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return 0, false
	}

	timestamp, err := h.fleet.Ingest(ctx.Request.Context(), req)
	h.metrics.ObserveReport(source, resultLabel(err), time.Since(start))

	if err != nil {
		writeError(ctx, err, failure)
		return 0, false
	}

	return timestamp, true
}

func (h *Handler) Servers(ctx *gin.Context) {
	list, err := h.fleet.ListServers(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err, "Failed to list servers")
		return
	}

	ctx.JSON(http.StatusOK, list)
}

func (h *Handler) History(ctx *gin.Context) {
	ip, err := utils.GetIP(ctx)
	if err != nil {
		writeError(ctx, err, "")
		return
	}

	points, err := h.fleet.GetHistory(ctx.Request.Context(), ip)
	if err != nil {
		writeError(ctx, err, "Failed to load history")
		return
	}

	ctx.JSON(http.StatusOK, points)
}

func (h *Handler) DeleteServer(ctx *gin.Context) {
	ip, err := utils.GetIP(ctx)
	if err != nil {
		writeError(ctx, err, "")
		return
	}

	if err := h.fleet.DeleteHost(ctx.Request.Context(), ip); err != nil {
		writeError(ctx, err, "Delete failed")
		return
	}

	h.metrics.IncDeletions()

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
