package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealquest/backend/internal/identity"
	"github.com/pageza/mealquest/backend/internal/types"
)

// Context keys set by Identity.
const (
	ContextIdentityKey = "identity_key"
	ContextUserID      = "user_id"
	ContextEmail       = "email"
	ContextGuest       = "guest"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// Identity resolves the caller's identity for every request. A request
// without an Authorization header is the guest identity; a header that is
// present but invalid is rejected rather than downgraded to guest.
func Identity(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(ContextIdentityKey, identity.Guest)
			c.Set(ContextGuest, true)
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization header format"})
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
			return
		}

		key := identity.Derive(claims.UserID)
		if _, err := identity.FavoritesKey(key); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "token subject is not a valid identity"})
			return
		}

		c.Set(ContextIdentityKey, key)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextGuest, claims.Guest)
		c.Next()
	}
}

// IdentityKey returns the key resolved by Identity, or the guest key when
// the middleware did not run.
func IdentityKey(c *gin.Context) identity.Key {
	if v, ok := c.Get(ContextIdentityKey); ok {
		if key, ok := v.(identity.Key); ok {
			return key
		}
	}
	return identity.Guest
}
