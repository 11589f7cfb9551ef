package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/auth"
)

// ContextKeySellerID holds the key for the authenticated seller ID in Gin context.
const ContextKeySellerID = "sellerID"

// AuthMiddleware creates a Gin middleware for JWT authentication. It resolves
// the caller's seller identity from the bearer token; handlers pass that
// identity explicitly into every service call.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]
		claims, err := auth.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			errMsg := fmt.Sprintf("Invalid or expired token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		c.Set(ContextKeySellerID, claims.SellerID)

		c.Next()
	}
}

// SellerID returns the authenticated seller ID from the Gin context.
// AuthMiddleware must have run on the route.
func SellerID(c *gin.Context) string {
	return c.GetString(ContextKeySellerID)
}
