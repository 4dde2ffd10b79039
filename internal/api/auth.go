package api

import (
	"net/http" // HTTP status codes
	"time"     // Session lifetime

	"github.com/Tathya-Dixit/recipe-share/internal/middleware" // Session context helpers
	"github.com/Tathya-Dixit/recipe-share/internal/service"    // Business rules
	"github.com/Tathya-Dixit/recipe-share/internal/utils"      // JWT and revocation helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// SessionConfig controls how session tokens are issued
type SessionConfig struct {
	Secret string        // HMAC key for session tokens
	TTL    time.Duration // Session lifetime
	Secure bool          // Send the cookie over HTTPS only
}

// LoginRequest is a login form submission
type LoginRequest struct {
	Username string `form:"username" json:"username"` // Username, matched exactly
	Password string `form:"password" json:"password"` // Plain password
}

// RegisterHandler creates an account
func RegisterHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterInput // Bind form or JSON body
		if err := c.ShouldBind(&req); err != nil {
			badForm(c)
			return
		}
		user, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, "", "Registration", logrus.Fields{"username": req.Username})
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New user ID
			"username": user.Username, // Username
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully! Please login.", "redirect": "/login"})
	}
}

// LoginHandler checks credentials and starts a session
func LoginHandler(svc *service.Service, sess SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind form or JSON body
		if err := c.ShouldBind(&req); err != nil {
			badForm(c)
			return
		}
		user, err := svc.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err, "", "Login", logrus.Fields{"username": req.Username})
			return
		}
		// Generate session token
		token, claims, err := utils.GenerateJWT(user.ID, user.Username, sess.Secret, sess.TTL)
		if err != nil {
			respondError(c, err, "", "Token generation", logrus.Fields{"user_id": user.ID})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, token, int(sess.TTL.Seconds()), "/", "", sess.Secure, true)
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "session_id": claims.ID}).Info("User logged in")
		c.JSON(http.StatusOK, gin.H{
			"message":  "Welcome back, " + user.Username + "!",
			"redirect": "/",
			"token":    token, // For API clients using the Authorization header
		})
	}
}

// LogoutHandler revokes the current session and clears the cookie. Anonymous callers get the same answer.
func LogoutHandler(cache utils.Cache, sess SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := middleware.CurrentClaims(c); ok {
			if err := utils.RevokeSession(c.Request.Context(), cache, claims.ID, claims.RemainingTTL()); err != nil {
				respondError(c, err, "", "Logout", logrus.Fields{"user_id": claims.UserID})
				return
			}
			logrus.WithFields(logrus.Fields{"user_id": claims.UserID, "session_id": claims.ID}).Info("User logged out")
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", sess.Secure, true) // Expire the cookie
		c.JSON(http.StatusOK, gin.H{"message": "See you again!", "redirect": "/"})
	}
}
