package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"

	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Claims is what the identity provider puts in its tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// ValidateToken accepts an HS256 token from the Authorization header ("Bearer <token>" or the bare
// token) or, for websocket upgrades, from the token query parameter.
func ValidateToken(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			unauthorized(c, "authorization header is missing")
			return
		}

		var claims Claims
		token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid token signing method")
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "invalid or expired token")
			return
		}
		if claims.UserID == "" {
			unauthorized(c, "invalid token claims")
			return
		}
		if claims.Role == "" {
			claims.Role = RoleCustomer
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated user set by ValidateToken.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func IsAdmin(c *gin.Context) bool {
	return Role(c) == RoleAdmin
}
