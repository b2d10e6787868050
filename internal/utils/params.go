package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

var ErrMissingIP = errors.New("missing ip parameter")

// GetIP reads the host address from the ?ip= query parameter.
func GetIP(ctx *gin.Context) (string, error) {
	ip := strings.TrimSpace(ctx.Query("ip"))

	if ip == "" {
		return "", ErrMissingIP
	}

	return ip, nil
}
