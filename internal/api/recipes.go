package api

import (
	"net/http" // HTTP status codes

	"github.com/Tathya-Dixit/recipe-share/internal/domain"     // Field limits
	"github.com/Tathya-Dixit/recipe-share/internal/middleware" // Session context helpers
	"github.com/Tathya-Dixit/recipe-share/internal/service"    // Business rules

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// formField describes one input of the recipe form
type formField struct {
	Required  bool `json:"required"`
	MaxLength int  `json:"max_length,omitempty"`
	File      bool `json:"file,omitempty"`
}

// recipeForm lists the recipe form inputs. Image is optional when editing.
func recipeForm(editing bool) map[string]formField {
	return map[string]formField{
		"title":               {Required: true, MaxLength: domain.MaxTitleLength},
		"small_description":   {Required: true, MaxLength: domain.MaxDescriptionLength},
		"estimated_prep_time": {Required: true, MaxLength: domain.MaxPrepTimeLength},
		"ingredients_list":    {Required: true},
		"process":             {Required: true},
		"image":               {Required: !editing, File: true},
	}
}

// FeedHandler lists recipes, newest first, with optional search and page
func FeedHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.Feed(c.Request.Context(), c.Query("search"), c.Query("page"))
		if err != nil {
			respondError(c, err, "", "Load feed", logrus.Fields{"search": c.Query("search")})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// RecipeDetailHandler returns one recipe with its reviews and rating
func RecipeDetailHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		viewerID, _ := middleware.CurrentUserID(c) // Zero for anonymous viewers
		detail, err := svc.RecipeDetail(c.Request.Context(), id, viewerID)
		if err != nil {
			respondError(c, err, "/", "Load recipe", logrus.Fields{"recipe_id": id})
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// CreateRecipeFormHandler describes the empty recipe form
func CreateRecipeFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fields": recipeForm(false)})
	}
}

// CreateRecipeHandler stores a new recipe authored by the caller
func CreateRecipeHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		var req service.RecipeInput // Bind multipart form or JSON body
		if err := c.ShouldBind(&req); err != nil {
			badForm(c)
			return
		}
		image, err := readUpload(c, "image", svc.MaxImageBytes())
		if err != nil {
			badForm(c)
			return
		}
		req.Image = image
		recipe, err := svc.CreateRecipe(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, err, "", "Create recipe", logrus.Fields{"user_id": userID})
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,       // Author
			"recipe_id": recipe.ID,    // New recipe
			"title":     recipe.Title, // Title
		}).Info("Recipe created")
		c.JSON(http.StatusCreated, gin.H{
			"message":  "Recipe created successfully!",
			"redirect": recipePath(recipe.ID),
			"recipe":   recipe,
		})
	}
}

// EditRecipeFormHandler returns the current values of a recipe the caller owns
func EditRecipeFormHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		recipe, err := svc.RecipeForEdit(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err, recipePath(id), "Load recipe", logrus.Fields{"recipe_id": id, "user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"recipe":    recipe,
			"image_url": svc.ImageURL(recipe.Image),
			"fields":    recipeForm(true),
		})
	}
}

// EditRecipeHandler saves an edit by the recipe's author
func EditRecipeHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		var req service.RecipeInput // Bind multipart form or JSON body
		if err := c.ShouldBind(&req); err != nil {
			badForm(c)
			return
		}
		image, err := readUpload(c, "image", svc.MaxImageBytes())
		if err != nil {
			badForm(c)
			return
		}
		req.Image = image
		recipe, err := svc.UpdateRecipe(c.Request.Context(), id, userID, req)
		if err != nil {
			redirect := ""
			if statusFor(err) != http.StatusBadRequest {
				redirect = recipePath(id) // Form errors stay on the form
			}
			respondError(c, err, redirect, "Update recipe", logrus.Fields{"recipe_id": id, "user_id": userID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "recipe_id": id, "new_image": image != nil}).Info("Recipe updated")
		c.JSON(http.StatusOK, gin.H{
			"message":  "Recipe updated successfully!",
			"redirect": recipePath(id),
			"recipe":   recipe,
		})
	}
}

// DeleteRecipeConfirmHandler returns the recipe the caller is about to delete
func DeleteRecipeConfirmHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		recipe, err := svc.RecipeForDelete(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err, recipePath(id), "Load recipe", logrus.Fields{"recipe_id": id, "user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipe": recipe, "confirm": "Are you sure you want to delete \"" + recipe.Title + "\"?"})
	}
}

// DeleteRecipeHandler removes a recipe the caller owns, with its reviews
func DeleteRecipeHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		userID, _ := middleware.CurrentUserID(c)
		if err := svc.DeleteRecipe(c.Request.Context(), id, userID); err != nil {
			respondError(c, err, recipePath(id), "Delete recipe", logrus.Fields{"recipe_id": id, "user_id": userID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "recipe_id": id}).Info("Recipe deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully!", "redirect": "/"})
	}
}
