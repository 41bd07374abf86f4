package middleware

import (
	"net/http"
	"strings"

	identityRepo "darisni/database/repository/identity"
	"darisni/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token, checks its hash against the
// identity record, and puts the identity ID into the request context.
func JWTAuthMiddleware(identities identityRepo.IdentityRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		identityID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || identityID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		identity, err := identities.GetByID(identityID)
		if err != nil || identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		// A revoked or rotated token no longer matches the stored hash.
		if identity.TokenHash == "" || identity.TokenHash != utils.HashToken(tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		c.Set("identityID", identityID)
		c.Next()
	}
}
