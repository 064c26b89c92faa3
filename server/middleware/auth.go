package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the Gin context key validated claims are stored under.
const ClaimsKey = "claims"

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (map[string]interface{}, error)

// Auth rejects requests without a valid "Authorization: Bearer" token.
// Validated claims are stored under ClaimsKey and per claim name.
func Auth(validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		claims, err := validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			return
		}
		c.Set(ClaimsKey, claims)
		for key, value := range claims {
			c.Set(key, value)
		}
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
