package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const operatorContextKey = "photocatOperator"

// AuthMiddleware validates bearer tokens and injects the operator claims.
func AuthMiddleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := service.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(operatorContextKey, claims)
		c.Next()
	}
}

// CurrentOperator extracts the authenticated operator from the context.
func CurrentOperator(c *gin.Context) (OperatorClaims, bool) {
	value, exists := c.Get(operatorContextKey)
	if !exists {
		return OperatorClaims{}, false
	}
	claims, ok := value.(OperatorClaims)
	return claims, ok
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
