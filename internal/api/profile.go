package api

import (
	"net/http" // HTTP status codes

	"github.com/Tathya-Dixit/recipe-share/internal/middleware" // Session context helpers
	"github.com/Tathya-Dixit/recipe-share/internal/service"    // Business rules

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// ProfileHandler returns the caller's profile with their recipes
func ProfileHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		view, err := svc.Profile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "/", "Load profile", logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// EditProfileFormHandler returns the caller's editable fields
func EditProfileFormHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		user, err := svc.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "/", "Load profile", logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"username":        user.Username, // Shown, never editable
			"email":           user.Email,
			"bio":             user.Bio,
			"profile_pic":     user.ProfilePic,
			"profile_pic_url": svc.ImageURL(user.ProfilePic),
		})
	}
}

// EditProfileHandler saves the caller's email, bio and optional new picture
func EditProfileHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		var req service.ProfileInput // Bind form or JSON body
		if err := c.ShouldBind(&req); err != nil {
			badForm(c)
			return
		}
		pic, err := readUpload(c, "profile_pic", svc.MaxImageBytes())
		if err != nil {
			badForm(c)
			return
		}
		req.ProfilePic = pic
		user, err := svc.UpdateProfile(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, err, "", "Profile update", logrus.Fields{"user_id": userID})
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"user_id":     user.ID,    // User ID
			"new_picture": pic != nil, // Whether the picture changed
		}).Info("Profile updated")
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully!", "redirect": "/profile", "user": user})
	}
}

// PublicProfileHandler returns any user's profile by username
func PublicProfileHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, _ := middleware.CurrentUserID(c) // Zero for anonymous viewers
		username := c.Param("username")
		view, err := svc.PublicProfile(c.Request.Context(), username, viewerID)
		if err != nil {
			respondError(c, err, "/", "Load profile", logrus.Fields{"username": username})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
