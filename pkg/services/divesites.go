package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/ingest"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/repositories"
)

// DiveSiteService defines the interface for dive site operations.
type DiveSiteService interface {
	InBounds(ctx context.Context, bounds models.MapBounds) ([]models.DiveSiteMarker, error)
	Get(ctx context.Context, siteID int) (*models.DiveSiteDetail, error)
	// Create stores a user-submitted site owned by userID.
	Create(ctx context.Context, userID int, in models.NewDiveSite) (*models.DiveSite, error)
	// Delete removes a site. Only the user who created it may delete it.
	Delete(ctx context.Context, userID, siteID int) error
}

type diveSiteService struct {
	siteRepo repositories.DiveSiteRepository
	vocab    *ingest.Vocabulary
	logger   *zap.Logger
}

var _ DiveSiteService = (*diveSiteService)(nil)

func NewDiveSiteService(siteRepo repositories.DiveSiteRepository, vocab *ingest.Vocabulary, logger *zap.Logger) DiveSiteService {
	return &diveSiteService{
		siteRepo: siteRepo,
		vocab:    vocab,
		logger:   logger.Named("divesites"),
	}
}

func (s *diveSiteService) InBounds(ctx context.Context, bounds models.MapBounds) ([]models.DiveSiteMarker, error) {
	if !bounds.Valid() {
		return nil, fmt.Errorf("map bounds out of range: %w", apperrors.ErrInvalidInput)
	}
	return s.siteRepo.InBounds(ctx, bounds)
}

func (s *diveSiteService) Get(ctx context.Context, siteID int) (*models.DiveSiteDetail, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	avg, err := s.siteRepo.AverageRating(ctx, siteID)
	if err != nil {
		return nil, err
	}

	detail := &models.DiveSiteDetail{DiveSite: *site, AverageRating: models.NoRatings}
	if avg != nil {
		detail.AverageRating = fmt.Sprintf("%.2f", *avg)
	}
	return detail, nil
}

func (s *diveSiteService) Create(ctx context.Context, userID int, in models.NewDiveSite) (*models.DiveSite, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	owner := strconv.Itoa(userID)
	site := &models.DiveSite{
		APIID:     &owner,
		Name:      in.Name,
		Lat:       &in.Lat,
		Lng:       &in.Lng,
		Ocean:     &in.Ocean,
		Country:   &in.Country,
		Continent: &in.Continent,
	}
	if in.Location != "" {
		site.Location = &in.Location
	}

	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, err
	}

	s.logger.Info("Dive site created", zap.Int("site_id", site.ID), zap.Int("user_id", userID))
	return site, nil
}

func (s *diveSiteService) validate(in *models.NewDiveSite) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Ocean = strings.TrimSpace(in.Ocean)
	in.Country = strings.TrimSpace(in.Country)
	in.Continent = strings.TrimSpace(in.Continent)
	in.Location = strings.TrimSpace(in.Location)

	switch {
	case in.Name == "":
		return fmt.Errorf("name is required: %w", apperrors.ErrInvalidInput)
	case in.Ocean == "":
		return fmt.Errorf("ocean is required: %w", apperrors.ErrInvalidInput)
	case in.Lat < -90 || in.Lat > 90:
		return fmt.Errorf("latitude %v out of range: %w", in.Lat, apperrors.ErrInvalidInput)
	case in.Lng < -180 || in.Lng > 180:
		return fmt.Errorf("longitude %v out of range: %w", in.Lng, apperrors.ErrInvalidInput)
	case !s.vocab.IsCountry(in.Country):
		return fmt.Errorf("unknown country %q: %w", in.Country, apperrors.ErrInvalidInput)
	case !s.vocab.IsContinent(in.Continent):
		return fmt.Errorf("unknown continent %q: %w", in.Continent, apperrors.ErrInvalidInput)
	}
	return nil
}

func (s *diveSiteService) Delete(ctx context.Context, userID, siteID int) error {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return err
	}
	if !site.CreatedBy(userID) {
		return apperrors.ErrForbidden
	}
	if err := s.siteRepo.Delete(ctx, siteID); err != nil {
		return err
	}
	s.logger.Info("Dive site deleted", zap.Int("site_id", siteID), zap.Int("user_id", userID))
	return nil
}
