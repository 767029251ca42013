package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/platefull/platefull-api/internal/config"
)

// VerifyTokenMiddleware verifies the JWT token provided in the Authorization header.
func VerifyTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		userID, ok := parseAccessToken(tokenString, cfg.EnvVars.JwtSecretKey)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// OptionalVerifyTokenMiddleware parses the Authorization header when present
// but lets the request through either way. Listing and detail endpoints are
// public yet render viewer-relative flags for authenticated callers.
func OptionalVerifyTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if userID, ok := parseAccessToken(tokenString, cfg.EnvVars.JwtSecretKey); ok {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

// parseAccessToken validates an HS256 access token and extracts the user ID.
func parseAccessToken(tokenString, secretKey string) (uint, bool) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return 0, false
	}

	// Ensure this is an access token, not a refresh token
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return 0, false
	}

	// Type assert to float64 (default for JSON numbers)
	idFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}

	return uint(idFloat), true
}
