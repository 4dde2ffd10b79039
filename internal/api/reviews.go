package api

import (
	"net/http" // HTTP status codes

	"github.com/Tathya-Dixit/recipe-share/internal/middleware" // Session context helpers
	"github.com/Tathya-Dixit/recipe-share/internal/service"    // Business rules

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// AddReviewHandler records the caller's rating and review of a recipe
func AddReviewHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		var req service.ReviewInput // Bind form or JSON body
		if err := c.ShouldBind(&req); err != nil {
			badForm(c)
			return
		}
		review, err := svc.AddReview(c.Request.Context(), id, userID, req)
		if err != nil {
			respondError(c, err, recipePath(id), "Add review", logrus.Fields{"recipe_id": id, "user_id": userID})
			return
		}
		// Log successful review
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,        // Reviewer
			"recipe_id": id,            // Recipe
			"rating":    review.Rating, // Stars
		}).Info("Review added")
		c.JSON(http.StatusCreated, gin.H{
			"message":  "Added Review Successfully!",
			"redirect": recipePath(id),
			"review":   review,
		})
	}
}

// DeleteReviewHandler removes the caller's review of a recipe
func DeleteReviewHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		if err := svc.DeleteReview(c.Request.Context(), id, userID); err != nil {
			respondError(c, err, recipePath(id), "Delete review", logrus.Fields{"recipe_id": id, "user_id": userID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "recipe_id": id}).Info("Review deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully!", "redirect": recipePath(id)})
	}
}
