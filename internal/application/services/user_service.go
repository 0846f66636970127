package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// UserService handles user management operations
type UserService struct {
	userRepo ports.UserRepository
	ids      ports.IdentityGenerator
	logger   *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, ids ports.IdentityGenerator, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		ids:      ids,
		logger:   logger,
	}
}

// Create registers a new user account
func (s *UserService) Create(ctx context.Context, req ports.CreateUserRequest) (*entities.User, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", entities.ErrValidation, req.Role)
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email %s already registered", entities.ErrValidation, req.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		UID:          s.ids.NewID(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		Role:         req.Role,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", "user_id", user.UID, "email", user.Email, "role", user.Role)

	created := *user
	created.PasswordHash = ""
	return &created, nil
}

// Get returns one user without credential material
func (s *UserService) Get(ctx context.Context, uid string) (*entities.User, error) {
	user, err := s.userRepo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// List returns all users sorted by display name, without credential material
func (s *UserService) List(ctx context.Context) ([]entities.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
