package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/Tathya-Dixit/recipe-share/internal/utils" // JWT and revocation helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// SessionCookie is the cookie carrying the session token
const SessionCookie = "session"

// Context keys set for authenticated requests
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
	ClaimsKey   = "claims"
)

// SessionToken returns the session token from the cookie or a Bearer header
func SessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token // Browser clients
	}
	authHeader := c.GetHeader("Authorization") // API clients
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// SessionMiddleware identifies the caller. Requests without a valid, unrevoked
// session continue as anonymous.
func SessionMiddleware(secret string, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := SessionToken(c)
		if tokenStr == "" {
			c.Next() // Anonymous
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			c.Next() // Expired or forged tokens are ignored
			return
		}
		revoked, err := utils.IsSessionRevoked(c.Request.Context(), cache, claims.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": claims.UserID, "error": err.Error()}).Warn("Session revocation check failed")
			c.Next()
			return
		}
		if revoked {
			c.Next() // Logged out
			return
		}
		c.Set(UserIDKey, claims.UserID)     // Store userID in context
		c.Set(UsernameKey, claims.Username) // Store username in context
		c.Set(ClaimsKey, claims)            // Kept for logout
		c.Next()
	}
}

// AuthRequired rejects anonymous callers
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required", "redirect": "/login"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// CurrentClaims returns the authenticated session's claims
func CurrentClaims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
