package api

import (
	"github.com/Tathya-Dixit/recipe-share/internal/middleware" // Session middleware
	"github.com/Tathya-Dixit/recipe-share/internal/service"    // Business rules
	"github.com/Tathya-Dixit/recipe-share/internal/storage"    // Image store
	"github.com/Tathya-Dixit/recipe-share/internal/utils"      // Cache

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Deps is everything the routes need
type Deps struct {
	DB      *gorm.DB
	Service *service.Service
	Cache   utils.Cache
	Session SessionConfig
	Media   *storage.MemoryStore // Served at /media when set
}

// RegisterRoutes mounts every route on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.SessionMiddleware(d.Session.Secret, d.Cache)) // Identify the caller on every request

	r.GET("/health", HealthHandler(d.DB)) // Liveness and DB check
	if d.Media != nil {
		r.GET("/media/*key", MediaHandler(d.Media)) // Development image serving
	}

	// Account routes
	anon := r.Group("")
	anon.Use(middleware.AnonymousOnly())
	anon.POST("/register", RegisterHandler(d.Service))
	anon.POST("/login", LoginHandler(d.Service, d.Session))
	r.GET("/logout", LogoutHandler(d.Cache, d.Session))
	r.POST("/logout", LogoutHandler(d.Cache, d.Session))

	// Public pages
	r.GET("/", FeedHandler(d.Service))
	r.GET("/recipe/:id", RecipeDetailHandler(d.Service))
	r.GET("/profile/:username", PublicProfileHandler(d.Service))

	// Logged-in routes
	auth := r.Group("")
	auth.Use(middleware.AuthRequired())
	auth.GET("/profile", ProfileHandler(d.Service))
	auth.GET("/profile/edit", EditProfileFormHandler(d.Service))
	auth.POST("/profile/edit", EditProfileHandler(d.Service))
	auth.GET("/recipe/create", CreateRecipeFormHandler())
	auth.POST("/recipe/create", CreateRecipeHandler(d.Service))
	auth.GET("/recipe/:id/edit", EditRecipeFormHandler(d.Service))
	auth.POST("/recipe/:id/edit", EditRecipeHandler(d.Service))
	auth.GET("/recipe/:id/delete", DeleteRecipeConfirmHandler(d.Service))
	auth.POST("/recipe/:id/delete", DeleteRecipeHandler(d.Service))
	auth.POST("/recipe/:id/review", AddReviewHandler(d.Service))
	auth.POST("/recipe/:id/review/delete", DeleteReviewHandler(d.Service))
}
