package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/fleetwatch/internal/logger"
	"github.com/monocle-dev/fleetwatch/internal/types"
)

type CredentialVerifier interface {
	Verify(ctx context.Context, user, password string) (bool, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware admits requests carrying the shared dashboard credential as
// HTTP Basic auth, or a session token (Bearer header or access_token query
// parameter) when tokens is non-nil.
func AuthMiddleware(creds CredentialVerifier, tokens TokenVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		// Browsers cannot set headers on a websocket handshake.
		if authHeader == "" && tokens != nil {
			if token := ctx.Query("access_token"); token != "" {
				authHeader = "Bearer " + token
			}
		}

		if authHeader == "" {
			ctx.Header("WWW-Authenticate", `Basic realm="fleetwatch"`)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Basic or Bearer"})
			return
		}

		switch strings.ToLower(parts[0]) {
		case "basic":
			user, password, ok := ctx.Request.BasicAuth()
			if !ok {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Malformed basic credentials"})
				return
			}

			valid, err := creds.Verify(ctx.Request.Context(), user, password)
			if err != nil {
				logger.Log.Error("credential lookup failed", "err", err)
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify credentials"})
				return
			}

			if !valid {
				ctx.Header("WWW-Authenticate", `Basic realm="fleetwatch"`)
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}

			ctx.Set(types.ContextPrincipalKey, user)

		case "bearer":
			if tokens == nil {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer tokens are not enabled"})
				return
			}

			subject, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}

			ctx.Set(types.ContextPrincipalKey, subject)

		default:
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Basic or Bearer"})
			return
		}

		ctx.Next()
	}
}
