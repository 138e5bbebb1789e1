package handlers

import (
	"net/http"
	"strings"
	"time"

	"fikerless/utils"

	"github.com/gin-gonic/gin"
)

// Tokens are minted by the identity service with a bounded lifetime;
// blacklisting for this long outlives any token still in circulation.
const revokedTokenTTL = 24 * time.Hour

// RevokeToken blacklists the caller's bearer token (logout).
func RevokeToken(c *gin.Context) {
	tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := utils.RevokeToken(c.Request.Context(), utils.HashToken(tokenString), revokedTokenTTL); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to revoke token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
