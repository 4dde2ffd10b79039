package api

import (
	"errors"   // Error inspection
	"io"       // Reading uploads
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"github.com/Tathya-Dixit/recipe-share/internal/service" // Business rules

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// statusFor maps a service error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a rule violation as its status, or logs an unexpected
// failure and answers 500 with a generic message.
func respondError(c *gin.Context, err error, redirect string, action string, fields logrus.Fields) {
	svcErr, ok := service.AsError(err)
	if !ok {
		if fields == nil {
			fields = logrus.Fields{}
		}
		fields["error"] = err.Error() // Error message
		logrus.WithFields(fields).Error(action + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}
	body := gin.H{"error": svcErr.Message}
	if len(svcErr.Fields) > 0 {
		body["fields"] = svcErr.Fields // Per-field form errors
	}
	if redirect != "" {
		body["redirect"] = redirect
	}
	c.JSON(statusFor(err), body)
}

// badForm answers a request body that could not be parsed
func badForm(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}

// recipeID parses the :id path parameter. Anything but a positive integer is not found.
func recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": service.MsgRecipeNotFound, "redirect": "/"})
		return 0, false
	}
	return uint(id), true
}

func recipePath(id uint) string {
	return "/recipe/" + strconv.FormatUint(uint64(id), 10)
}

// readUpload reads an optional multipart file. Reads stop one byte past
// limit so oversize files are still reported as too large.
func readUpload(c *gin.Context, field string, limit int64) (*service.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil // No file submitted
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &service.Upload{Filename: fh.Filename, Data: data}, nil
}
