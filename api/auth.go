package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// authMiddleware verifies an HS256 bearer token on mutating routes. When no
// decode token is configured the API runs open, which is the expected mode
// for local use.
func (m ApiHandler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.JwtDecodeToken == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			returnErrorJsonCode(fmt.Errorf("missing bearer token"), c, 401)
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.JwtDecodeToken), nil
		})
		if err != nil {
			returnErrorJsonCode(fmt.Errorf("failed to parse token: %w", err), c, 401)
			return
		}
		if !token.Valid {
			returnErrorJsonCode(fmt.Errorf("invalid token"), c, 401)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				c.Set("userID", sub)
			}
		}

		c.Next()
	}
}
