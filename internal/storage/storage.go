// Package storage keeps uploaded recipe images and profile pictures.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Folders uploaded images are kept under
const (
	ProfileFolder = "profiles"
	RecipeFolder  = "recipe_images"
)

// ErrNotImage is returned when uploaded bytes do not sniff as a supported image
var ErrNotImage = errors.New("upload a valid image")

// ErrTooLarge is returned when an upload exceeds the configured limit
var ErrTooLarge = errors.New("image is too large")

// ErrEmptyKey is returned for operations without a storage key
var ErrEmptyKey = errors.New("storage key is required")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// ImageStore persists image bytes under a key and resolves keys to URLs
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// DetectImage returns the MIME type and canonical extension of data, or ErrNotImage
func DetectImage(data []byte) (string, string, error) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if allowedImageTypes[m.String()] {
			return m.String(), m.Extension(), nil
		}
	}
	return "", "", ErrNotImage
}

// SaveImage validates data as an image no larger than maxBytes and stores it
// under folder with a random name. It returns the storage key.
func SaveImage(ctx context.Context, store ImageStore, folder string, data []byte, maxBytes int64) (string, error) {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", ErrTooLarge
	}
	contentType, ext, err := DetectImage(data)
	if err != nil {
		return "", err
	}
	key := path.Join(folder, uuid.NewString()+ext)
	if err := store.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

func publicURL(base, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
