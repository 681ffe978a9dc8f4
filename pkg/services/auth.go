package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/repositories"
)

// SignupRequest holds the fields needed to register.
type SignupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthService registers and authenticates users.
type AuthService interface {
	// Signup creates the user. A taken username returns apperrors.ErrConflict.
	Signup(ctx context.Context, req SignupRequest) (*models.User, error)
	// Authenticate returns the user when password matches, otherwise
	// apperrors.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
	cost     int
	logger   *zap.Logger
}

var _ AuthService = (*authService)(nil)

func NewAuthService(userRepo repositories.UserRepository, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		cost:     bcrypt.DefaultCost,
		logger:   logger.Named("auth"),
	}
}

func (s *authService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	switch {
	case len(req.Username) < models.MinUsernameLength:
		return nil, fmt.Errorf("username must be at least %d characters: %w", models.MinUsernameLength, apperrors.ErrInvalidInput)
	case len(req.Password) < models.MinPasswordLength:
		return nil, fmt.Errorf("password must be at least %d characters: %w", models.MinPasswordLength, apperrors.ErrInvalidInput)
	case req.FirstName == "" || req.LastName == "":
		return nil, fmt.Errorf("first and last name are required: %w", apperrors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User signed up", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("Password mismatch", zap.Int("user_id", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}
