package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/Tathya-Dixit/recipe-share/internal/storage" // Image store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// MediaHandler serves images held in memory
func MediaHandler(store *storage.MemoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		obj, ok := store.Get(key)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.Header("Cache-Control", "public, max-age=86400") // Keys are never reused
		c.Data(http.StatusOK, obj.ContentType, obj.Data)
	}
}

// HealthHandler reports whether the database answers
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
