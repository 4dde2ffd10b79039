package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Exact decimal arithmetic for averages
)

// Review Model
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`                                                      // Primary key
	Rating     int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"` // 1 to 5 inclusive
	Review     string    `gorm:"size:500" json:"review"`                                                    // Review body
	RecipeID   uint      `gorm:"not null;uniqueIndex:idx_reviews_recipe_reviewer" json:"recipe_id"`         // Foreign key to Recipe
	ReviewerID uint      `gorm:"not null;uniqueIndex:idx_reviews_recipe_reviewer" json:"reviewer_id"`       // Foreign key to User
	Recipe     *Recipe   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`                                     // Reviewed recipe
	Reviewer   User      `gorm:"constraint:OnDelete:CASCADE;" json:"reviewer"`                              // Reviewing user, deleting it deletes the review
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`                                          // Creation time
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`                                          // Last edit time
}

// Rating bounds and review body limit
const (
	MinRating       = 1
	MaxRating       = 5
	MaxReviewLength = 500
)

// RatingSummary is the derived rating data of a recipe
type RatingSummary struct {
	Average float64 `json:"average_rating"` // Mean rating rounded to one decimal, 0 without reviews
	Count   int64   `json:"total_reviews"`  // Number of reviews
}

// NewRatingSummary builds a summary from the sum and count of ratings.
// The mean is rounded half away from zero to one decimal place.
func NewRatingSummary(sum, count int64) RatingSummary {
	if count == 0 {
		return RatingSummary{}
	}
	avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(1)
	return RatingSummary{Average: avg.InexactFloat64(), Count: count}
}

// SummarizeRatings computes the rating summary of a set of reviews
func SummarizeRatings(reviews []Review) RatingSummary {
	var sum int64
	for _, r := range reviews {
		sum += int64(r.Rating)
	}
	return NewRatingSummary(sum, int64(len(reviews)))
}
