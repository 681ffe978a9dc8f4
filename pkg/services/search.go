package services

import (
	"context"
	"strings"

	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/repositories"
)

// SearchService pages through users and dive sites by name.
type SearchService interface {
	Users(ctx context.Context, query string, page int) (models.Page[models.UserSummary], error)
	DiveSites(ctx context.Context, query string, page int) (models.Page[models.DiveSite], error)
}

type searchService struct {
	userRepo repositories.UserRepository
	siteRepo repositories.DiveSiteRepository
}

var _ SearchService = (*searchService)(nil)

func NewSearchService(userRepo repositories.UserRepository, siteRepo repositories.DiveSiteRepository) SearchService {
	return &searchService{userRepo: userRepo, siteRepo: siteRepo}
}

func (s *searchService) Users(ctx context.Context, query string, page int) (models.Page[models.UserSummary], error) {
	page = max(page, 1)
	users, total, err := s.userRepo.Search(ctx, strings.TrimSpace(query), models.SearchPageSize, models.Offset(page, models.SearchPageSize))
	if err != nil {
		return models.Page[models.UserSummary]{}, err
	}
	return models.NewPage(users, page, models.SearchPageSize, total), nil
}

func (s *searchService) DiveSites(ctx context.Context, query string, page int) (models.Page[models.DiveSite], error) {
	page = max(page, 1)
	sites, total, err := s.siteRepo.Search(ctx, strings.TrimSpace(query), models.SearchPageSize, models.Offset(page, models.SearchPageSize))
	if err != nil {
		return models.Page[models.DiveSite]{}, err
	}
	return models.NewPage(sites, page, models.SearchPageSize, total), nil
}
