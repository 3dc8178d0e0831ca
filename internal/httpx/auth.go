package httpx

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserID = "userID"
	CtxRole   = "userRole"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 bearer token for the given user.
func SignToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireAuth validates the Authorization bearer token and stores the
// user id and role in the gin context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Success: false, Message: "authorization header is required"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Success: false, Message: "invalid token format, must be 'Bearer <token>'"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Success: false, Message: "invalid or expired token"})
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user holds the role.
// Must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, Envelope{Success: false, Message: "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) string { return c.GetString(CtxUserID) }

// Role returns the authenticated user role set by RequireAuth.
func Role(c *gin.Context) string { return c.GetString(CtxRole) }
