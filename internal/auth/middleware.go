package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireRole enforces bearer JWT tokens signed with HS256 and rejects callers
// whose role claim does not match the expected role for the route.
func RequireRole(role, signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token required"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		c.Set(identityKey, identityFromClaims(claims))
		c.Next()
	}
}

// ContextIdentity returns the authenticated identity set by RequireRole.
func ContextIdentity(c *gin.Context) Identity {
	val, _ := c.Get(identityKey)
	id, _ := val.(Identity)
	return id
}
