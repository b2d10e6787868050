package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/internal/types"
)

// GetPrincipal returns who the auth gate admitted, or "" on open routes.
func GetPrincipal(ctx *gin.Context) string {
	return ctx.GetString(types.ContextPrincipalKey)
}

func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(types.ContextRequestIDKey)
}
