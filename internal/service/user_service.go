package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recipebox/internal/errors"
	"recipebox/internal/model"
	"recipebox/internal/repository"
)

const bcryptCost = 10

// UserService handles account creation and lookup.
type UserService interface {
	CreateUser(ctx context.Context, email, password, name string) (*model.User, error)
	CreateSuperuser(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// NormalizeEmail lowercases the domain part of an email address, leaving
// the local part untouched.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// CreateUser persists a new user with a hashed password. The plaintext
// password is never stored.
func (s *userService) CreateUser(ctx context.Context, email, password, name string) (*model.User, error) {
	if email == "" {
		return nil, errors.ErrEmailRequired
	}
	email = NormalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the existence check and
		// land on the unique index instead.
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// CreateSuperuser creates a user with the staff and superuser flags set.
func (s *userService) CreateSuperuser(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, errors.ErrEmailRequired
	}
	email = NormalizeEmail(email)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create superuser: %w", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	return s.userRepo.FindByID(ctx, id)
}
