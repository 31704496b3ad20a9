package repository

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"studyplanner/internal/model"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
)

// UserRepository is the directory of planner accounts and their contact
// details for remote reminder channels.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register creates an account with a bcrypt-hashed password.
func (r *UserRepository) Register(ctx context.Context, username, password, role, email, phone string) (*model.User, error) {
	db := r.db.WithContext(ctx)

	var existing model.User
	err := db.Where("username = ?", username).First(&existing).Error
	switch {
	case err == nil:
		return nil, ErrUsernameTaken
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fallthrough to create
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Email:        email,
		PhoneNumber:  phone,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate verifies a username/password pair against the stored hash.
func (r *UserRepository) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// UpdateContact replaces the delivery destinations for an account.
func (r *UserRepository) UpdateContact(ctx context.Context, username, email, phone string, telegramChat int64) error {
	updates := map[string]interface{}{
		"email":         email,
		"phone_number":  phone,
		"telegram_chat": telegramChat,
	}
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
