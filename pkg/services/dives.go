package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/repositories"
)

// DiveService defines the interface for logging and browsing dives.
type DiveService interface {
	// Log records a dive by userID at siteID.
	Log(ctx context.Context, userID, siteID int, in models.DiveInput) (*models.DiveView, error)
	Get(ctx context.Context, diveID int) (*models.DiveView, error)
	// Edit updates a dive. Only the diver who logged it may edit it.
	Edit(ctx context.Context, userID, diveID int, in models.DiveInput) (*models.DiveView, error)
	// Delete removes a dive. Only the diver who logged it may delete it.
	Delete(ctx context.Context, userID, diveID int) error
	// Feed returns the latest dives of userID and everyone they added as a buddy.
	Feed(ctx context.Context, userID int) ([]models.DiveView, error)
}

type diveService struct {
	diveRepo  repositories.DiveRepository
	siteRepo  repositories.DiveSiteRepository
	buddyRepo repositories.BuddyRepository
	logger    *zap.Logger
}

var _ DiveService = (*diveService)(nil)

func NewDiveService(
	diveRepo repositories.DiveRepository,
	siteRepo repositories.DiveSiteRepository,
	buddyRepo repositories.BuddyRepository,
	logger *zap.Logger,
) DiveService {
	return &diveService{
		diveRepo:  diveRepo,
		siteRepo:  siteRepo,
		buddyRepo: buddyRepo,
		logger:    logger.Named("dives"),
	}
}

func (s *diveService) Log(ctx context.Context, userID, siteID int, in models.DiveInput) (*models.DiveView, error) {
	if _, err := s.siteRepo.GetByID(ctx, siteID); err != nil {
		return nil, err
	}

	dive := &models.Dive{UserID: userID, DiveSiteID: siteID}
	if err := s.apply(ctx, userID, dive, in); err != nil {
		return nil, err
	}
	// Create numbers the dive; an explicit number only applies on edit.
	dive.DiveNo = 0

	if err := s.diveRepo.Create(ctx, dive); err != nil {
		return nil, err
	}

	s.logger.Info("Dive logged",
		zap.Int("dive_id", dive.ID),
		zap.Int("user_id", userID),
		zap.Int("site_id", siteID),
		zap.Int("dive_no", dive.DiveNo),
	)
	return s.diveRepo.GetByID(ctx, dive.ID)
}

func (s *diveService) Get(ctx context.Context, diveID int) (*models.DiveView, error) {
	return s.diveRepo.GetByID(ctx, diveID)
}

func (s *diveService) Edit(ctx context.Context, userID, diveID int, in models.DiveInput) (*models.DiveView, error) {
	existing, err := s.owned(ctx, userID, diveID)
	if err != nil {
		return nil, err
	}

	dive := existing.Dive
	if err := s.apply(ctx, userID, &dive, in); err != nil {
		return nil, err
	}

	if err := s.diveRepo.Update(ctx, &dive); err != nil {
		return nil, err
	}

	s.logger.Info("Dive updated", zap.Int("dive_id", diveID), zap.Int("user_id", userID))
	return s.diveRepo.GetByID(ctx, diveID)
}

func (s *diveService) Delete(ctx context.Context, userID, diveID int) error {
	if _, err := s.owned(ctx, userID, diveID); err != nil {
		return err
	}
	if err := s.diveRepo.Delete(ctx, diveID); err != nil {
		return err
	}
	s.logger.Info("Dive deleted", zap.Int("dive_id", diveID), zap.Int("user_id", userID))
	return nil
}

func (s *diveService) Feed(ctx context.Context, userID int) ([]models.DiveView, error) {
	ids, err := s.buddyRepo.BuddyIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.diveRepo.Feed(ctx, append(ids, userID), ProfileDiveLimit)
}

func (s *diveService) owned(ctx context.Context, userID, diveID int) (*models.DiveView, error) {
	dive, err := s.diveRepo.GetByID(ctx, diveID)
	if err != nil {
		return nil, err
	}
	if dive.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return dive, nil
}

// apply validates in and copies it onto dive.
func (s *diveService) apply(ctx context.Context, userID int, dive *models.Dive, in models.DiveInput) error {
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(in.Date))
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", apperrors.ErrInvalidInput)
	}

	switch {
	case in.Rating < models.MinRating || in.Rating > models.MaxRating:
		return fmt.Errorf("rating must be between %d and %d: %w", models.MinRating, models.MaxRating, apperrors.ErrInvalidInput)
	case in.BottomTime < 0 || in.BottomTime > models.MaxBottomTime:
		return fmt.Errorf("bottom time must be between 0 and %d: %w", models.MaxBottomTime, apperrors.ErrInvalidInput)
	case in.MaxDepth < 0 || in.MaxDepth > models.MaxDepth:
		return fmt.Errorf("max depth must be between 0 and %d: %w", models.MaxDepth, apperrors.ErrInvalidInput)
	case in.DepthUnits != models.UnitsFeet && in.DepthUnits != models.UnitsMeters:
		return fmt.Errorf("depth units must be %s or %s: %w", models.UnitsMeters, models.UnitsFeet, apperrors.ErrInvalidInput)
	case in.DiveNo != nil && *in.DiveNo < 1:
		return fmt.Errorf("dive number must be positive: %w", apperrors.ErrInvalidInput)
	}

	types, unknown := models.DiveTypesFromNames(in.DiveTypes)
	if len(unknown) > 0 {
		return fmt.Errorf("unknown dive types %v: %w", unknown, apperrors.ErrInvalidInput)
	}

	buddy := in.Buddy()
	if buddy != nil {
		ok, err := s.buddyRepo.IsBuddy(ctx, userID, *buddy)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %d is not one of your buddies: %w", *buddy, apperrors.ErrInvalidInput)
		}
	}

	dive.Date = date
	if in.DiveNo != nil {
		dive.DiveNo = *in.DiveNo
	}
	dive.Rating = in.Rating
	dive.BottomTime = in.BottomTime
	dive.MaxDepth = in.DepthInFeet()
	dive.Comments = in.Comments
	dive.BuddyID = buddy
	dive.Types = types
	return nil
}
