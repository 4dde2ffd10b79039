package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tathya-Dixit/recipe-share/internal/domain"
	"github.com/Tathya-Dixit/recipe-share/internal/storage"
)

// Account rule messages
const (
	MsgPasswordMismatch   = "Passwords don't match!"
	MsgPasswordTooShort   = "Password must be at least 8 characters long!"
	MsgUsernameTooShort   = "Username must be at least 5 characters long!"
	MsgInvalidEmail       = "Enter a valid email address."
	MsgUsernameExists     = "Username already exists!"
	MsgEmailExists        = "Email already registered!"
	MsgInvalidCredentials = "Invalid username or password!"
	MsgUserNotFound       = "User not found!"
)

// RegisterInput is a registration form submission
type RegisterInput struct {
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
}

// ProfileInput is a profile edit submission. A nil ProfilePic keeps the current picture.
type ProfileInput struct {
	Email      string  `form:"email" json:"email" validate:"required,email,max=254"`
	Bio        string  `form:"bio" json:"bio" validate:"max=300"`
	ProfilePic *Upload `form:"-" json:"-"`
}

// ProfileView is a user with the recipes they authored
type ProfileView struct {
	User          domain.User  `json:"user"`
	ProfilePicURL string       `json:"profile_pic_url"`
	Recipes       []RecipeCard `json:"recipes"`
	TotalRecipes  int64        `json:"total_recipes"`
	IsOwner       bool         `json:"is_owner"`
}

// dummyHash is compared against when the username is unknown so both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("recipe-share-dummy-password"), bcrypt.DefaultCost)

// Register creates an account. Rules are checked in order and the first failure is returned.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Password1 != in.Password2 {
		return nil, newError(ErrValidation, MsgPasswordMismatch)
	}
	if utf8.RuneCountInString(in.Password1) < domain.MinPasswordLength {
		return nil, newError(ErrValidation, MsgPasswordTooShort)
	}
	if utf8.RuneCountInString(in.Username) < domain.MinUsernameLength {
		return nil, newError(ErrValidation, MsgUsernameTooShort)
	}
	email := strings.TrimSpace(in.Email)
	if validate.Var(email, "required,email,max=254") != nil {
		return nil, newError(ErrValidation, MsgInvalidEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{Username: in.Username, Email: email, Password: string(hash)}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx, &domain.User{}, "username = ?", user.Username); err != nil {
			return err
		} else if taken {
			return newError(ErrConflict, MsgUsernameExists)
		}
		if taken, err := exists(tx, &domain.User{}, "email = ?", user.Email); err != nil {
			return err
		} else if taken {
			return newError(ErrConflict, MsgEmailExists)
		}
		return tx.Omit(clause.Associations).Create(user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent registration
		if taken, _ := exists(s.db.WithContext(ctx), &domain.User{}, "username = ?", user.Username); taken {
			return nil, newError(ErrConflict, MsgUsernameExists)
		}
		return nil, newError(ErrConflict, MsgEmailExists)
	}
	if err != nil {
		if _, ok := AsError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies a username and password. Unknown users and wrong
// passwords fail with the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if isNotFound(err) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, newError(ErrUnauthorized, MsgInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(ErrUnauthorized, MsgInvalidCredentials)
	}
	return &user, nil
}

// GetUser loads a user by id
func (s *Service) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if isNotFound(err) {
		return nil, newError(ErrNotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Profile returns the caller's own profile
func (s *Service) Profile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view, err := s.profileView(ctx, user)
	if err != nil {
		return nil, err
	}
	view.IsOwner = true
	return view, nil
}

// PublicProfile resolves a profile by username. viewerID is 0 for anonymous viewers.
func (s *Service) PublicProfile(ctx context.Context, username string, viewerID uint) (*ProfileView, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if isNotFound(err) {
		return nil, newError(ErrNotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	view, err := s.profileView(ctx, &user)
	if err != nil {
		return nil, err
	}
	view.IsOwner = viewerID != 0 && viewerID == user.ID
	return view, nil
}

func (s *Service) profileView(ctx context.Context, user *domain.User) (*ProfileView, error) {
	var recipes []domain.Recipe
	err := s.db.WithContext(ctx).
		Where("author_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	for i := range recipes {
		recipes[i].Author = *user
	}
	cards, err := s.recipeCards(ctx, recipes)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		User:          *user,
		ProfilePicURL: s.images.URL(user.ProfilePic),
		Recipes:       cards,
		TotalRecipes:  int64(len(cards)),
	}, nil
}

// UpdateProfile changes the email, bio and optionally the profile picture of a user.
// All field failures are reported together.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Bio = strings.TrimSpace(in.Bio)

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := validateStruct(in)
	if fields == nil {
		fields = map[string]string{}
	}
	if in.ProfilePic != nil {
		if msg := s.checkImage(in.ProfilePic); msg != "" {
			fields["profile_pic"] = msg
		}
	}
	if _, bad := fields["email"]; !bad && in.Email != user.Email {
		taken, err := exists(s.db.WithContext(ctx), &domain.User{}, "email = ? AND id <> ?", in.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			fields["email"] = "User with this Email already exists."
		}
	}
	if len(fields) > 0 {
		return nil, fieldErrors(fields)
	}

	oldPic := user.ProfilePic
	newPic := ""
	if in.ProfilePic != nil {
		newPic, err = storage.SaveImage(ctx, s.images, storage.ProfileFolder, in.ProfilePic.Data, s.maxImageBytes)
		if err != nil {
			return nil, fmt.Errorf("save profile picture: %w", err)
		}
	}

	updates := map[string]any{"email": in.Email, "bio": in.Bio}
	if newPic != "" {
		updates["profile_pic"] = newPic
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Updates(updates).Error
	})
	if err != nil {
		s.discardImage(ctx, newPic)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fieldErrors(map[string]string{"email": "User with this Email already exists."})
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if newPic != "" && oldPic != "" {
		s.discardImage(ctx, oldPic)
	}
	user.Email = in.Email
	user.Bio = in.Bio
	if newPic != "" {
		user.ProfilePic = newPic
	}
	return user, nil
}

// exists reports whether any row of model matches the condition
func exists(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
