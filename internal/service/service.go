package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Tathya-Dixit/recipe-share/internal/domain"
	"github.com/Tathya-Dixit/recipe-share/internal/storage"
	"github.com/Tathya-Dixit/recipe-share/internal/utils"
)

const (
	// ratingCacheTTL bounds how long a cached rating summary is served
	ratingCacheTTL = 10 * time.Minute
	// ratingVersionTTL outlives every summary written under the version
	ratingVersionTTL = 24 * time.Hour
)

// Service applies the recipe-sharing rules on top of the store
type Service struct {
	db            *gorm.DB
	cache         utils.Cache
	images        storage.ImageStore
	maxImageBytes int64
}

// Upload is an uploaded file
type Upload struct {
	Filename string
	Data     []byte
}

// New creates a Service. maxImageBytes <= 0 disables the upload size limit.
func New(db *gorm.DB, cache utils.Cache, images storage.ImageStore, maxImageBytes int64) *Service {
	return &Service{db: db, cache: cache, images: images, maxImageBytes: maxImageBytes}
}

// MaxImageBytes is the upload size limit, 0 when unlimited
func (s *Service) MaxImageBytes() int64 {
	if s.maxImageBytes < 0 {
		return 0
	}
	return s.maxImageBytes
}

// ImageURL resolves a stored image reference to a URL
func (s *Service) ImageURL(key string) string {
	return s.images.URL(key)
}

// checkImage validates an upload without storing it and returns a field message on failure
func (s *Service) checkImage(u *Upload) string {
	if s.maxImageBytes > 0 && int64(len(u.Data)) > s.maxImageBytes {
		return "Image file too large ( > " + strconv.FormatInt(s.maxImageBytes>>20, 10) + "MB )."
	}
	if _, _, err := storage.DetectImage(u.Data); err != nil {
		return "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	}
	return ""
}

// discardImage removes an image object; failures are logged, never returned
func (s *Service) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Failed to delete image")
	}
}

// Summaries are stored under the recipe's current rating version. Writes bump
// the version, so a summary computed before the write lands under a key no
// reader asks for.
func ratingVersionKey(recipeID uint) string {
	return "recipe:" + strconv.FormatUint(uint64(recipeID), 10) + ":rating:version"
}

func ratingKey(recipeID uint, version string) string {
	return "recipe:" + strconv.FormatUint(uint64(recipeID), 10) + ":rating:" + version
}

// ratingVersion returns the current rating version, "0" when none was set and
// "" when the cache cannot be read
func (s *Service) ratingVersion(ctx context.Context, recipeID uint) string {
	var version string
	found, err := s.cache.Get(ctx, ratingVersionKey(recipeID), &version)
	if err != nil {
		logrus.WithFields(logrus.Fields{"recipe_id": recipeID, "error": err.Error()}).Warn("Rating cache read failed")
		return ""
	}
	if !found || version == "" {
		return "0"
	}
	return version
}

func (s *Service) invalidateRating(ctx context.Context, recipeID uint) {
	if err := s.cache.Set(ctx, ratingVersionKey(recipeID), uuid.NewString(), ratingVersionTTL); err != nil {
		logrus.WithFields(logrus.Fields{"recipe_id": recipeID, "error": err.Error()}).Warn("Failed to invalidate rating cache")
	}
}

// ratingSummaries returns the rating summary of every id, from cache when possible
func (s *Service) ratingSummaries(ctx context.Context, ids []uint) (map[uint]domain.RatingSummary, error) {
	out := make(map[uint]domain.RatingSummary, len(ids))
	versions := make(map[uint]string, len(ids))
	var missing []uint
	for _, id := range ids {
		version := s.ratingVersion(ctx, id)
		versions[id] = version
		if version != "" {
			var sum domain.RatingSummary
			found, err := s.cache.Get(ctx, ratingKey(id, version), &sum)
			if err != nil {
				logrus.WithFields(logrus.Fields{"recipe_id": id, "error": err.Error()}).Warn("Rating cache read failed")
			}
			if found && err == nil {
				out[id] = sum
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	var rows []struct {
		RecipeID uint
		Count    int64
		Total    int64
	}
	err := s.db.WithContext(ctx).Model(&domain.Review{}).
		Select("recipe_id, COUNT(*) AS count, SUM(rating) AS total").
		Where("recipe_id IN ?", missing).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		out[id] = domain.RatingSummary{}
	}
	for _, r := range rows {
		out[r.RecipeID] = domain.NewRatingSummary(r.Total, r.Count)
	}
	for _, id := range missing {
		if versions[id] == "" {
			continue
		}
		if err := s.cache.Set(ctx, ratingKey(id, versions[id]), out[id], ratingCacheTTL); err != nil {
			logrus.WithFields(logrus.Fields{"recipe_id": id, "error": err.Error()}).Warn("Rating cache write failed")
		}
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
