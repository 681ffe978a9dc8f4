package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/database"
	"github.com/social-scuba/divelog/pkg/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create inserts user and fills in ID and CreatedAt. A taken username
	// returns apperrors.ErrConflict.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// UpdateProfile saves the editable profile fields of user.
	UpdateProfile(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int) error
	// Search matches usernames case-insensitively. An empty query matches everyone.
	Search(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, int, error)
}

type userRepository struct {
	db *database.DB
}

var _ UserRepository = (*userRepository)(nil)

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password_hash, first_name, last_name, image_url, header_image_url, bio, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.HeaderImageURL,
		&u.Bio,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, image_url, header_image_url, bio)
		VALUES ($1, $2, $3, $4,
		        COALESCE(NULLIF($5, ''), '/static/images/diver-prof-photo-612x612.jpeg'),
		        COALESCE(NULLIF($6, ''), '/static/images/anon-diver-hero.png'),
		        COALESCE(NULLIF($7, ''), 'No bio yet!'))
		RETURNING id, image_url, header_image_url, bio, created_at`

	err := r.db.QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.ImageURL,
		user.HeaderImageURL,
		user.Bio,
	).Scan(&user.ID, &user.ImageURL, &user.HeaderImageURL, &user.Bio, &user.CreatedAt)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("username %q: %w", user.Username, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $1, image_url = $2, header_image_url = $3, bio = $4
		WHERE id = $5`

	result, err := r.db.Exec(ctx, query, user.Username, user.ImageURL, user.HeaderImageURL, user.Bio, user.ID)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("username %q: %w", user.Username, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, int, error) {
	pattern := "%" + escapeLike(query) + "%"

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, username, image_url
		FROM users
		WHERE username ILIKE $1
		ORDER BY id
		LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.ImageURL); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}
