package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tathya-Dixit/recipe-share/internal/domain"
	"github.com/Tathya-Dixit/recipe-share/internal/storage"
)

// Recipe rule messages
const (
	MsgRecipeNotFound = "Recipe not found!"
	MsgNotEditOwner   = "You can only edit your own recipes!"
	MsgNotDeleteOwner = "You can only delete your own recipes!"
	MsgImageRequired  = "This field is required."
)

// RecipeInput is a recipe create or edit submission. Image is required on
// create; on edit a nil Image keeps the current one.
type RecipeInput struct {
	Title             string  `form:"title" json:"title" validate:"required,max=100"`
	SmallDescription  string  `form:"small_description" json:"small_description" validate:"required,max=500"`
	EstimatedPrepTime string  `form:"estimated_prep_time" json:"estimated_prep_time" validate:"required,max=30"`
	IngredientsList   string  `form:"ingredients_list" json:"ingredients_list" validate:"required"`
	Process           string  `form:"process" json:"process" validate:"required"`
	Image             *Upload `form:"-" json:"-"`
}

func (in *RecipeInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.SmallDescription = strings.TrimSpace(in.SmallDescription)
	in.EstimatedPrepTime = strings.TrimSpace(in.EstimatedPrepTime)
	in.IngredientsList = strings.TrimSpace(in.IngredientsList)
	in.Process = strings.TrimSpace(in.Process)
}

// RecipeCard is a recipe with its rating summary, as listed in feeds and profiles
type RecipeCard struct {
	domain.Recipe
	domain.RatingSummary
	ImageURL string `json:"image_url"`
}

// RecipeDetail is everything shown on a recipe page
type RecipeDetail struct {
	Recipe           domain.Recipe   `json:"recipe"`
	ImageURL         string          `json:"image_url"`
	Ingredients      []string        `json:"ingredients"`
	Steps            []string        `json:"steps"`
	Reviews          []domain.Review `json:"reviews"`
	CurrUserReviewed bool            `json:"curr_user_reviewed"`
	AverageRating    float64         `json:"average_rating"`
	TotalReviews     int64           `json:"total_reviews"`
}

func (s *Service) validateRecipe(in *RecipeInput, imageRequired bool) error {
	in.normalize()
	fields := validateStruct(in)
	if fields == nil {
		fields = map[string]string{}
	}
	switch {
	case in.Image != nil:
		if msg := s.checkImage(in.Image); msg != "" {
			fields["image"] = msg
		}
	case imageRequired:
		fields["image"] = MsgImageRequired
	}
	if len(fields) > 0 {
		return fieldErrors(fields)
	}
	return nil
}

// findRecipe loads a recipe with its author
func findRecipe(tx *gorm.DB, id uint) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := tx.Preload("Author").First(&recipe, id).Error
	if isNotFound(err) {
		return nil, newError(ErrNotFound, MsgRecipeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return &recipe, nil
}

// ownedRecipe loads a recipe and checks the caller authored it. Not-found wins over ownership.
func (s *Service) ownedRecipe(ctx context.Context, id, userID uint, denied string) (*domain.Recipe, error) {
	recipe, err := findRecipe(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, newError(ErrForbidden, denied)
	}
	return recipe, nil
}

// CreateRecipe validates a submission and stores it as authored by authorID
func (s *Service) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*domain.Recipe, error) {
	if err := s.validateRecipe(&in, true); err != nil {
		return nil, err
	}
	author, err := s.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	key, err := storage.SaveImage(ctx, s.images, storage.RecipeFolder, in.Image.Data, s.maxImageBytes)
	if err != nil {
		return nil, fmt.Errorf("save recipe image: %w", err)
	}
	recipe := &domain.Recipe{
		Title:             in.Title,
		Image:             key,
		SmallDescription:  in.SmallDescription,
		EstimatedPrepTime: in.EstimatedPrepTime,
		IngredientsList:   in.IngredientsList,
		Process:           in.Process,
		AuthorID:          authorID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(recipe).Error
	})
	if err != nil {
		s.discardImage(ctx, key)
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	recipe.Author = *author
	return recipe, nil
}

// RecipeForEdit returns a recipe the caller may edit
func (s *Service) RecipeForEdit(ctx context.Context, id, userID uint) (*domain.Recipe, error) {
	return s.ownedRecipe(ctx, id, userID, MsgNotEditOwner)
}

// RecipeForDelete returns a recipe the caller may delete, for the confirmation step
func (s *Service) RecipeForDelete(ctx context.Context, id, userID uint) (*domain.Recipe, error) {
	return s.ownedRecipe(ctx, id, userID, MsgNotDeleteOwner)
}

// UpdateRecipe re-validates and saves an edit by the recipe's author
func (s *Service) UpdateRecipe(ctx context.Context, id, userID uint, in RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, id, userID, MsgNotEditOwner)
	if err != nil {
		return nil, err
	}
	if err := s.validateRecipe(&in, false); err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	newImage := ""
	if in.Image != nil {
		newImage, err = storage.SaveImage(ctx, s.images, storage.RecipeFolder, in.Image.Data, s.maxImageBytes)
		if err != nil {
			return nil, fmt.Errorf("save recipe image: %w", err)
		}
		recipe.Image = newImage
	}
	recipe.Title = in.Title
	recipe.SmallDescription = in.SmallDescription
	recipe.EstimatedPrepTime = in.EstimatedPrepTime
	recipe.IngredientsList = in.IngredientsList
	recipe.Process = in.Process

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(recipe).
			Select("title", "image", "small_description", "estimated_prep_time", "ingredients_list", "process", "updated_at").
			Updates(recipe).Error
	})
	if err != nil {
		s.discardImage(ctx, newImage)
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	if newImage != "" {
		s.discardImage(ctx, oldImage)
	}
	return recipe, nil
}

// DeleteRecipe removes a recipe and its reviews. Only the author may delete.
func (s *Service) DeleteRecipe(ctx context.Context, id, userID uint) error {
	recipe, err := s.ownedRecipe(ctx, id, userID, MsgNotDeleteOwner)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Recipe{}, recipe.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	s.invalidateRating(ctx, recipe.ID)
	s.discardImage(ctx, recipe.Image)
	return nil
}

// RecipeDetail assembles a recipe page. viewerID is 0 for anonymous viewers.
func (s *Service) RecipeDetail(ctx context.Context, id, viewerID uint) (*RecipeDetail, error) {
	db := s.db.WithContext(ctx)
	recipe, err := findRecipe(db, id)
	if err != nil {
		return nil, err
	}
	var reviews []domain.Review
	err = db.Preload("Reviewer").
		Where("recipe_id = ?", recipe.ID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	reviewed := false
	if viewerID != 0 {
		for _, r := range reviews {
			if r.ReviewerID == viewerID {
				reviewed = true
				break
			}
		}
	}
	summary := domain.SummarizeRatings(reviews)
	return &RecipeDetail{
		Recipe:           *recipe,
		ImageURL:         s.images.URL(recipe.Image),
		Ingredients:      recipe.IngredientItems(),
		Steps:            recipe.ProcessSteps(),
		Reviews:          reviews,
		CurrUserReviewed: reviewed,
		AverageRating:    summary.Average,
		TotalReviews:     summary.Count,
	}, nil
}

// recipeCards attaches rating summaries and image URLs to recipes
func (s *Service) recipeCards(ctx context.Context, recipes []domain.Recipe) ([]RecipeCard, error) {
	ids := make([]uint, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	summaries, err := s.ratingSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("rating summaries: %w", err)
	}
	cards := make([]RecipeCard, len(recipes))
	for i, r := range recipes {
		cards[i] = RecipeCard{Recipe: r, RatingSummary: summaries[r.ID], ImageURL: s.images.URL(r.Image)}
	}
	return cards, nil
}
