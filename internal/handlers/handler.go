package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/internal/fleet"
	"github.com/monocle-dev/fleetwatch/internal/logger"
	"github.com/monocle-dev/fleetwatch/internal/metrics"
	"github.com/monocle-dev/fleetwatch/internal/utils"
)

type Handler struct {
	fleet   *fleet.Service
	metrics *metrics.Metrics
	ping    func(context.Context) error
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithReadiness sets the dependency check behind /api/ready.
func WithReadiness(ping func(context.Context) error) Option {
	return func(h *Handler) {
		h.ping = ping
	}
}

func New(svc *fleet.Service, opts ...Option) *Handler {
	h := &Handler{fleet: svc}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// writeError maps service errors onto status codes. Store failures carry the
// underlying error as detail so operators can see what broke.
func writeError(ctx *gin.Context, err error, failure string) {
	switch {
	case errors.Is(err, fleet.ErrBadRequest), errors.Is(err, utils.ErrMissingIP):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, fleet.ErrNotRegistered):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Server is not registered, register first"})
	case errors.Is(err, fleet.ErrUnauthorized):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	default:
		logger.Log.Error(failure, "err", err, "request_id", utils.GetRequestID(ctx))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": failure, "detail": err.Error()})
	}
}

// resultLabel is the outcome label recorded for report metrics.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, fleet.ErrBadRequest):
		return "bad_request"
	case errors.Is(err, fleet.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, fleet.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
