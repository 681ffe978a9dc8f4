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

// ProfileDiveLimit caps the dives shown on a profile and in the feed.
const ProfileDiveLimit = 100

// UserService defines the interface for user profile operations.
type UserService interface {
	Get(ctx context.Context, userID int) (*models.User, error)
	// GetProfile returns the user with their stats and most recent dives.
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
	Stats(ctx context.Context, userID int) (models.UserStats, error)
	// UpdateProfile applies update after checking password against the
	// stored hash. A wrong password returns apperrors.ErrInvalidCredentials.
	UpdateProfile(ctx context.Context, userID int, password string, update models.ProfileUpdate) (*models.User, error)
	Delete(ctx context.Context, userID int) error
}

type userService struct {
	userRepo repositories.UserRepository
	diveRepo repositories.DiveRepository
	logger   *zap.Logger
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new user service with dependencies.
func NewUserService(userRepo repositories.UserRepository, diveRepo repositories.DiveRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		diveRepo: diveRepo,
		logger:   logger.Named("users"),
	}
}

func (s *userService) Get(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	dives, err := s.diveRepo.ListByUser(ctx, userID, ProfileDiveLimit)
	if err != nil {
		return nil, err
	}

	return &models.Profile{User: user, Stats: stats, Dives: dives}, nil
}

func (s *userService) Stats(ctx context.Context, userID int) (models.UserStats, error) {
	var stats models.UserStats

	totals, err := s.diveRepo.Totals(ctx, []int{userID})
	if err != nil {
		return stats, err
	}
	if len(totals) == 0 {
		return stats, apperrors.ErrNotFound
	}

	countries, continents, err := s.diveRepo.CountPlaces(ctx, userID)
	if err != nil {
		return stats, err
	}
	// Sites without a recognized country still count once per continent.
	if countries == 0 {
		countries = continents
	}

	t := totals[0]
	return models.UserStats{
		MaxDepth:      formatStat(t.MaxDepth, 2),
		MaxBottomTime: formatStat(t.MaxBottomTime, 1),
		DiveCount:     t.DiveCount,
		Countries:     countries,
		Continents:    continents,
	}, nil
}

// formatStat renders v with the given precision, or "0" when there is nothing to show.
func formatStat(v float64, precision int) string {
	if v == 0 {
		return "0"
	}
	return fmt.Sprintf("%.*f", precision, v)
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, password string, update models.ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	username := strings.TrimSpace(update.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", apperrors.ErrInvalidInput)
	}
	if username != user.Username {
		_, err := s.userRepo.GetByUsername(ctx, username)
		switch {
		case err == nil:
			return nil, fmt.Errorf("username %q is already taken: %w", username, apperrors.ErrConflict)
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
	}

	user.Username = username
	if update.ImageURL != "" {
		user.ImageURL = update.ImageURL
	}
	if update.HeaderImageURL != "" {
		user.HeaderImageURL = update.HeaderImageURL
	}
	user.Bio = update.Bio

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", zap.Int("user_id", user.ID))
	return user, nil
}

func (s *userService) Delete(ctx context.Context, userID int) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.Int("user_id", userID))
	return nil
}
