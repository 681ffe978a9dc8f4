package repositories

import (
	"context"
	"fmt"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/database"
	"github.com/social-scuba/divelog/pkg/models"
)

// BuddyRepository stores the directed "added as buddy" relation.
type BuddyRepository interface {
	// Add records that userID added buddyID. Adding twice is a no-op.
	Add(ctx context.Context, userID, buddyID int) error
	Remove(ctx context.Context, userID, buddyID int) error
	// ListBuddies returns the users userID has added.
	ListBuddies(ctx context.Context, userID int) ([]models.UserSummary, error)
	// ListBuddiesOf returns the users who have added userID.
	ListBuddiesOf(ctx context.Context, userID int) ([]models.UserSummary, error)
	IsBuddy(ctx context.Context, userID, buddyID int) (bool, error)
	BuddyIDs(ctx context.Context, userID int) ([]int, error)
}

type buddyRepository struct {
	db *database.DB
}

var _ BuddyRepository = (*buddyRepository)(nil)

func NewBuddyRepository(db *database.DB) BuddyRepository {
	return &buddyRepository{db: db}
}

func (r *buddyRepository) Add(ctx context.Context, userID, buddyID int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO buddies (main_user_id, buddy_user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, buddyID)
	if err != nil {
		switch {
		case hasPgCode(err, pgForeignKeyViolation):
			return apperrors.ErrNotFound
		case hasPgCode(err, pgCheckViolation):
			return fmt.Errorf("cannot add yourself as a buddy: %w", apperrors.ErrInvalidInput)
		}
		return fmt.Errorf("failed to add buddy: %w", err)
	}
	return nil
}

func (r *buddyRepository) Remove(ctx context.Context, userID, buddyID int) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM buddies WHERE main_user_id = $1 AND buddy_user_id = $2`, userID, buddyID)
	if err != nil {
		return fmt.Errorf("failed to remove buddy: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *buddyRepository) ListBuddies(ctx context.Context, userID int) ([]models.UserSummary, error) {
	return r.list(ctx, `
		SELECT u.id, u.username, u.image_url
		FROM buddies b
		JOIN users u ON u.id = b.buddy_user_id
		WHERE b.main_user_id = $1
		ORDER BY u.username`, userID)
}

func (r *buddyRepository) ListBuddiesOf(ctx context.Context, userID int) ([]models.UserSummary, error) {
	return r.list(ctx, `
		SELECT u.id, u.username, u.image_url
		FROM buddies b
		JOIN users u ON u.id = b.main_user_id
		WHERE b.buddy_user_id = $1
		ORDER BY u.username`, userID)
}

func (r *buddyRepository) list(ctx context.Context, query string, userID int) ([]models.UserSummary, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list buddies: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan buddy: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buddies: %w", err)
	}
	return users, nil
}

func (r *buddyRepository) IsBuddy(ctx context.Context, userID, buddyID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM buddies WHERE main_user_id = $1 AND buddy_user_id = $2)`,
		userID, buddyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check buddy: %w", err)
	}
	return exists, nil
}

func (r *buddyRepository) BuddyIDs(ctx context.Context, userID int) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT buddy_user_id FROM buddies WHERE main_user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list buddy ids: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan buddy id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
