package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AnonymousOnly sends logged-in users away from the login and register pages
func AnonymousOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Already authenticated callers go to the feed
		if _, ok := CurrentUserID(c); ok {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"message": "Already logged in", "redirect": "/"})
			return
		}
		c.Next()
	}
}
