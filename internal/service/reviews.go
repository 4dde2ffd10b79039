package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tathya-Dixit/recipe-share/internal/domain"
)

// Review rule messages
const (
	MsgOwnRecipeReview  = "You can not review your own recipe!"
	MsgAlreadyReviewed  = "You've already reviewed this recipe. You can edit or delete it."
	MsgRatingRequired   = "Please select rating before submission!"
	MsgRatingOutOfRange = "Rating must be between 1 and 5!"
	MsgReviewTooLong    = "Review must be at most 500 characters long!"
	MsgReviewNotFound   = "Review not found!"
)

// ReviewInput is a review submission. Rating stays raw so a missing value can be told apart.
type ReviewInput struct {
	Rating RawRating `form:"rating" json:"rating"`
	Review string    `form:"review" json:"review"`
}

// RawRating is an unparsed rating. JSON bodies may send it as a number or a string.
type RawRating string

func (r *RawRating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawRating(s)
	default:
		*r = RawRating(data) // numbers, booleans and the like fail the range check later
	}
	return nil
}

// AddReview records the caller's rating and review of a recipe
func (s *Service) AddReview(ctx context.Context, recipeID, userID uint, in ReviewInput) (*domain.Review, error) {
	var review *domain.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := findRecipe(tx, recipeID)
		if err != nil {
			return err
		}
		if recipe.AuthorID == userID {
			return newError(ErrForbidden, MsgOwnRecipeReview)
		}
		if taken, err := exists(tx, &domain.Review{}, "recipe_id = ? AND reviewer_id = ?", recipe.ID, userID); err != nil {
			return err
		} else if taken {
			return newError(ErrConflict, MsgAlreadyReviewed)
		}

		raw := strings.TrimSpace(string(in.Rating))
		if raw == "" {
			return newError(ErrValidation, MsgRatingRequired)
		}
		rating, err := strconv.Atoi(raw)
		if err != nil || rating < domain.MinRating || rating > domain.MaxRating {
			return newError(ErrValidation, MsgRatingOutOfRange)
		}
		body := strings.TrimSpace(in.Review)
		if utf8.RuneCountInString(body) > domain.MaxReviewLength {
			return newError(ErrValidation, MsgReviewTooLong)
		}

		review = &domain.Review{Rating: rating, Review: body, RecipeID: recipe.ID, ReviewerID: userID}
		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			return err
		}
		return tx.First(&review.Reviewer, userID).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, newError(ErrConflict, MsgAlreadyReviewed)
	}
	if err != nil {
		if _, ok := AsError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.invalidateRating(ctx, recipeID)
	return review, nil
}

// DeleteReview removes the caller's review of a recipe
func (s *Service) DeleteReview(ctx context.Context, recipeID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := findRecipe(tx, recipeID)
		if err != nil {
			return err
		}
		res := tx.Where("recipe_id = ? AND reviewer_id = ?", recipe.ID, userID).Delete(&domain.Review{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(ErrNotFound, MsgReviewNotFound)
		}
		return nil
	})
	if err != nil {
		if _, ok := AsError(err); ok {
			return err
		}
		return fmt.Errorf("delete review: %w", err)
	}
	s.invalidateRating(ctx, recipeID)
	return nil
}
