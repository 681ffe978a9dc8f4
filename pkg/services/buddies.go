package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/repositories"
)

// BuddyService manages buddy lists and the leaderboards built from them.
type BuddyService interface {
	Add(ctx context.Context, userID, buddyID int) error
	Remove(ctx context.Context, userID, buddyID int) error
	// ListBuddies returns the users userID has added.
	ListBuddies(ctx context.Context, userID int) ([]models.UserSummary, error)
	// ListBuddiesOf returns the users who have added userID.
	ListBuddiesOf(ctx context.Context, userID int) ([]models.UserSummary, error)
	IsBuddy(ctx context.Context, userID, otherID int) (bool, error)
	// Leaderboards ranks userID and their buddies.
	Leaderboards(ctx context.Context, userID int) (*models.Leaderboards, error)
}

type buddyService struct {
	buddyRepo repositories.BuddyRepository
	userRepo  repositories.UserRepository
	diveRepo  repositories.DiveRepository
	logger    *zap.Logger
}

var _ BuddyService = (*buddyService)(nil)

func NewBuddyService(
	buddyRepo repositories.BuddyRepository,
	userRepo repositories.UserRepository,
	diveRepo repositories.DiveRepository,
	logger *zap.Logger,
) BuddyService {
	return &buddyService{
		buddyRepo: buddyRepo,
		userRepo:  userRepo,
		diveRepo:  diveRepo,
		logger:    logger.Named("buddies"),
	}
}

func (s *buddyService) Add(ctx context.Context, userID, buddyID int) error {
	if userID == buddyID {
		return fmt.Errorf("cannot add yourself as a buddy: %w", apperrors.ErrInvalidInput)
	}
	if _, err := s.userRepo.GetByID(ctx, buddyID); err != nil {
		return err
	}
	if err := s.buddyRepo.Add(ctx, userID, buddyID); err != nil {
		return err
	}
	s.logger.Debug("Buddy added", zap.Int("user_id", userID), zap.Int("buddy_id", buddyID))
	return nil
}

func (s *buddyService) Remove(ctx context.Context, userID, buddyID int) error {
	return s.buddyRepo.Remove(ctx, userID, buddyID)
}

func (s *buddyService) ListBuddies(ctx context.Context, userID int) ([]models.UserSummary, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.buddyRepo.ListBuddies(ctx, userID)
}

func (s *buddyService) ListBuddiesOf(ctx context.Context, userID int) ([]models.UserSummary, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.buddyRepo.ListBuddiesOf(ctx, userID)
}

func (s *buddyService) IsBuddy(ctx context.Context, userID, otherID int) (bool, error) {
	return s.buddyRepo.IsBuddy(ctx, userID, otherID)
}

func (s *buddyService) Leaderboards(ctx context.Context, userID int) (*models.Leaderboards, error) {
	buddyIDs, err := s.buddyRepo.BuddyIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals, err := s.diveRepo.Totals(ctx, append([]int{userID}, buddyIDs...))
	if err != nil {
		return nil, err
	}

	// Ties keep the user ahead of their buddies.
	ordered := make([]models.DiverTotals, 0, len(totals))
	for _, t := range totals {
		if t.User.ID == userID {
			ordered = append(ordered, t)
		}
	}
	if len(ordered) == 0 {
		return nil, apperrors.ErrNotFound
	}
	for _, t := range totals {
		if t.User.ID != userID {
			ordered = append(ordered, t)
		}
	}

	return &models.Leaderboards{
		BottomTime: rank(ordered, "min", func(t models.DiverTotals) float64 { return t.MaxBottomTime }),
		Depth:      rank(ordered, "ft", func(t models.DiverTotals) float64 { return t.MaxDepth }),
		DiveCount:  rank(ordered, "dives", func(t models.DiverTotals) float64 { return float64(t.DiveCount) }),
	}, nil
}

// rank sorts totals by value descending and keeps the top LeaderboardSize.
func rank(totals []models.DiverTotals, unit string, value func(models.DiverTotals) float64) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(totals))
	for _, t := range totals {
		entries = append(entries, models.LeaderboardEntry{User: t.User, Value: value(t), Unit: unit})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if len(entries) > models.LeaderboardSize {
		entries = entries[:models.LeaderboardSize]
	}
	return entries
}
