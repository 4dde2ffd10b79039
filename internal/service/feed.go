package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Tathya-Dixit/recipe-share/internal/domain"
)

// FeedPageSize is the fixed number of recipes per feed page
const FeedPageSize = 9

// FeedPage is one page of the recipe feed
type FeedPage struct {
	Recipes     []RecipeCard `json:"recipes"`
	Total       int64        `json:"total"`
	Search      string       `json:"search"`
	Page        int          `json:"page"`
	TotalPages  int          `json:"total_pages"`
	PageSize    int          `json:"page_size"`
	HasNext     bool         `json:"has_next"`
	HasPrevious bool         `json:"has_previous"`
}

// likeEscaper makes user text match literally inside LIKE ... ESCAPE '!'
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Feed lists recipes newest first, filtered by search over title and
// ingredients. The raw page parameter never causes an error: non-numbers and
// values below 1 give page 1, values past the end give the last page.
func (s *Service) Feed(ctx context.Context, search, page string) (*FeedPage, error) {
	search = strings.TrimSpace(search)
	query := s.db.WithContext(ctx).Model(&domain.Recipe{})
	if search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(ingredients_list) LIKE ? ESCAPE '!'", pattern, pattern)
	}

	query = query.Session(&gorm.Session{}) // safe to reuse for count and page queries

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}
	totalPages := int((total + FeedPageSize - 1) / FeedPageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	number := ClampPage(page, totalPages)

	var recipes []domain.Recipe
	err := query.Preload("Author").
		Order("created_at DESC, id DESC").
		Offset((number - 1) * FeedPageSize).
		Limit(FeedPageSize).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	cards, err := s.recipeCards(ctx, recipes)
	if err != nil {
		return nil, err
	}
	return &FeedPage{
		Recipes:     cards,
		Total:       total,
		Search:      search,
		Page:        number,
		TotalPages:  totalPages,
		PageSize:    FeedPageSize,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}, nil
}

// ClampPage turns a raw page parameter into a page number in [1, totalPages]
func ClampPage(raw string, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if n > totalPages {
		return totalPages
	}
	return n
}
