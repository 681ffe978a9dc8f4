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

// DiveRepository defines data access for logged dives and their dive types.
type DiveRepository interface {
	// Create inserts dive and its dive types in one transaction. A zero DiveNo
	// is replaced with the diver's dive count plus one.
	Create(ctx context.Context, dive *models.Dive) error
	GetByID(ctx context.Context, id int) (*models.DiveView, error)
	// Update saves every editable field of dive, including its dive types.
	Update(ctx context.Context, dive *models.Dive) error
	Delete(ctx context.Context, id int) error
	// ListByUser returns the diver's most recent dives, newest first.
	ListByUser(ctx context.Context, userID, limit int) ([]models.DiveView, error)
	// Feed returns the most recent dives logged by any of userIDs, newest first.
	Feed(ctx context.Context, userIDs []int, limit int) ([]models.DiveView, error)
	// Totals returns one row per user in userIDs, including users with no dives.
	Totals(ctx context.Context, userIDs []int) ([]models.DiverTotals, error)
	// CountPlaces counts the distinct countries and continents a diver has dived in.
	CountPlaces(ctx context.Context, userID int) (countries int, continents int, err error)
}

type diveRepository struct {
	db *database.DB
}

var _ DiveRepository = (*diveRepository)(nil)

func NewDiveRepository(db *database.DB) DiveRepository {
	return &diveRepository{db: db}
}

const diveViewSelect = `
	SELECT d.id, d.user_id, d.dive_no, d.date, d.divesite_id, d.rating, d.bottom_time, d.max_depth,
	       d.comments, d.buddy_id,
	       COALESCE(t.drysuit, FALSE), COALESCE(t.night, FALSE), COALESCE(t.cave, FALSE),
	       COALESCE(t.wreck, FALSE), COALESCE(t.drift, FALSE), COALESCE(t.ice, FALSE),
	       COALESCE(t.deep, FALSE), COALESCE(t.technical, FALSE), COALESCE(t.altitude, FALSE),
	       COALESCE(t.muck, FALSE),
	       u.username, u.image_url,
	       b.username, b.image_url,
	       s.name
	FROM dives d
	JOIN users u ON u.id = d.user_id
	JOIN divesites s ON s.id = d.divesite_id
	LEFT JOIN users b ON b.id = d.buddy_id
	LEFT JOIN divetypes t ON t.dive_id = d.id`

func scanDiveView(row pgx.Row) (*models.DiveView, error) {
	var (
		v             models.DiveView
		buddyName     *string
		buddyImageURL *string
	)
	t := &v.Types
	err := row.Scan(
		&v.ID, &v.UserID, &v.DiveNo, &v.Date, &v.DiveSiteID, &v.Rating, &v.BottomTime, &v.MaxDepth,
		&v.Comments, &v.BuddyID,
		&t.Drysuit, &t.Night, &t.Cave, &t.Wreck, &t.Drift, &t.Ice, &t.Deep, &t.Technical, &t.Altitude, &t.Muck,
		&v.Diver.Username, &v.Diver.ImageURL,
		&buddyName, &buddyImageURL,
		&v.DiveSiteName,
	)
	if err != nil {
		return nil, err
	}

	v.Diver.ID = v.UserID
	if v.BuddyID != nil && buddyName != nil {
		v.Buddy = &models.UserSummary{ID: *v.BuddyID, Username: *buddyName}
		if buddyImageURL != nil {
			v.Buddy.ImageURL = *buddyImageURL
		}
	}
	v.TypeNames = v.Types.Names()
	return &v, nil
}

func (r *diveRepository) Create(ctx context.Context, dive *models.Dive) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if dive.DiveNo == 0 {
			var count int
			if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM dives WHERE user_id = $1`, dive.UserID).Scan(&count); err != nil {
				return fmt.Errorf("failed to count dives: %w", err)
			}
			dive.DiveNo = count + 1
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO dives (user_id, dive_no, date, divesite_id, rating, bottom_time, max_depth, comments, buddy_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			dive.UserID, dive.DiveNo, dive.Date, dive.DiveSiteID, dive.Rating,
			dive.BottomTime, dive.MaxDepth, dive.Comments, dive.BuddyID,
		).Scan(&dive.ID)
		if err != nil {
			return translateDiveWriteError(err, "create")
		}

		return saveDiveTypes(ctx, tx, dive.ID, dive.Types)
	})
}

func saveDiveTypes(ctx context.Context, tx pgx.Tx, diveID int, t models.DiveTypes) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO divetypes (dive_id, drysuit, night, cave, wreck, drift, ice, deep, technical, altitude, muck)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (dive_id) DO UPDATE SET
			drysuit = EXCLUDED.drysuit,
			night = EXCLUDED.night,
			cave = EXCLUDED.cave,
			wreck = EXCLUDED.wreck,
			drift = EXCLUDED.drift,
			ice = EXCLUDED.ice,
			deep = EXCLUDED.deep,
			technical = EXCLUDED.technical,
			altitude = EXCLUDED.altitude,
			muck = EXCLUDED.muck`,
		diveID, t.Drysuit, t.Night, t.Cave, t.Wreck, t.Drift, t.Ice, t.Deep, t.Technical, t.Altitude, t.Muck,
	)
	if err != nil {
		return fmt.Errorf("failed to save dive types: %w", err)
	}
	return nil
}

func translateDiveWriteError(err error, op string) error {
	switch {
	case hasPgCode(err, pgForeignKeyViolation):
		return fmt.Errorf("dive references a missing user or site: %w", apperrors.ErrNotFound)
	case hasPgCode(err, pgCheckViolation):
		return fmt.Errorf("dive values out of range: %w", apperrors.ErrInvalidInput)
	}
	return fmt.Errorf("failed to %s dive: %w", op, err)
}

func (r *diveRepository) GetByID(ctx context.Context, id int) (*models.DiveView, error) {
	view, err := scanDiveView(r.db.QueryRow(ctx, diveViewSelect+` WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dive: %w", err)
	}
	return view, nil
}

func (r *diveRepository) Update(ctx context.Context, dive *models.Dive) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE dives
			SET dive_no = $1, date = $2, rating = $3, bottom_time = $4, max_depth = $5,
			    comments = $6, buddy_id = $7
			WHERE id = $8`,
			dive.DiveNo, dive.Date, dive.Rating, dive.BottomTime, dive.MaxDepth,
			dive.Comments, dive.BuddyID, dive.ID,
		)
		if err != nil {
			return translateDiveWriteError(err, "update")
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return saveDiveTypes(ctx, tx, dive.ID, dive.Types)
	})
}

func (r *diveRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM dives WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dive: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *diveRepository) ListByUser(ctx context.Context, userID, limit int) ([]models.DiveView, error) {
	return r.list(ctx, diveViewSelect+`
		WHERE d.user_id = $1
		ORDER BY d.date DESC, d.id DESC
		LIMIT $2`, userID, limit)
}

func (r *diveRepository) Feed(ctx context.Context, userIDs []int, limit int) ([]models.DiveView, error) {
	if len(userIDs) == 0 {
		return []models.DiveView{}, nil
	}
	return r.list(ctx, diveViewSelect+`
		WHERE d.user_id = ANY($1)
		ORDER BY d.date DESC, d.id DESC
		LIMIT $2`, userIDs, limit)
}

func (r *diveRepository) list(ctx context.Context, query string, args ...any) ([]models.DiveView, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dives: %w", err)
	}
	defer rows.Close()

	dives := []models.DiveView{}
	for rows.Next() {
		view, err := scanDiveView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dive: %w", err)
		}
		dives = append(dives, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dives: %w", err)
	}
	return dives, nil
}

func (r *diveRepository) Totals(ctx context.Context, userIDs []int) ([]models.DiverTotals, error) {
	if len(userIDs) == 0 {
		return []models.DiverTotals{}, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, u.image_url,
		       COALESCE(MAX(d.bottom_time), 0),
		       COALESCE(MAX(d.max_depth), 0),
		       COUNT(d.id)
		FROM users u
		LEFT JOIN dives d ON d.user_id = u.id
		WHERE u.id = ANY($1)
		GROUP BY u.id, u.username, u.image_url
		ORDER BY u.id`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to total dives: %w", err)
	}
	defer rows.Close()

	totals := []models.DiverTotals{}
	for rows.Next() {
		var t models.DiverTotals
		if err := rows.Scan(&t.User.ID, &t.User.Username, &t.User.ImageURL, &t.MaxBottomTime, &t.MaxDepth, &t.DiveCount); err != nil {
			return nil, fmt.Errorf("failed to scan dive totals: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dive totals: %w", err)
	}
	return totals, nil
}

func (r *diveRepository) CountPlaces(ctx context.Context, userID int) (int, int, error) {
	var countries, continents int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT s.country), COUNT(DISTINCT s.continent)
		FROM dives d
		JOIN divesites s ON s.id = d.divesite_id
		WHERE d.user_id = $1`, userID).Scan(&countries, &continents)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count places: %w", err)
	}
	return countries, continents, nil
}
