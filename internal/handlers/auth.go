package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/internal/auth"
	"github.com/monocle-dev/fleetwatch/internal/logger"
	"github.com/monocle-dev/fleetwatch/internal/utils"
)

// Login exchanges the Basic credential already checked by the auth gate for a
// session token.
func Login(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		principal := utils.GetPrincipal(ctx)

		if principal == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		token, expires, err := issuer.Issue(principal)
		if err != nil {
			logger.Log.Error("failed to generate JWT", "err", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": expires.UnixMilli(),
		})
	}
}
