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

// DiveSiteRepository defines data access for dive sites.
type DiveSiteRepository interface {
	// ReplaceAll empties the table (and everything that references it) and
	// bulk-inserts sites, all in one transaction.
	ReplaceAll(ctx context.Context, sites []models.DiveSite) (int64, error)
	Create(ctx context.Context, site *models.DiveSite) error
	GetByID(ctx context.Context, id int) (*models.DiveSite, error)
	Delete(ctx context.Context, id int) error
	// InBounds returns sites whose coordinates fall inside b, edges included.
	// A view across the antimeridian matches both sides of it.
	InBounds(ctx context.Context, b models.MapBounds) ([]models.DiveSiteMarker, error)
	// Search matches names case-insensitively. An empty query matches every site.
	Search(ctx context.Context, query string, limit, offset int) ([]models.DiveSite, int, error)
	// AverageRating is nil when no dive has been logged at the site.
	AverageRating(ctx context.Context, id int) (*float64, error)
}

type diveSiteRepository struct {
	db *database.DB
}

var _ DiveSiteRepository = (*diveSiteRepository)(nil)

func NewDiveSiteRepository(db *database.DB) DiveSiteRepository {
	return &diveSiteRepository{db: db}
}

var diveSiteCopyColumns = []string{"api_id", "name", "region", "lat", "lng", "ocean", "location", "country", "continent"}

const diveSiteColumns = `id, api_id, name, region, lat, lng, ocean, location, country, continent`

func scanDiveSite(row pgx.Row) (models.DiveSite, error) {
	var s models.DiveSite
	err := row.Scan(&s.ID, &s.APIID, &s.Name, &s.Region, &s.Lat, &s.Lng, &s.Ocean, &s.Location, &s.Country, &s.Continent)
	return s, err
}

func (r *diveSiteRepository) ReplaceAll(ctx context.Context, sites []models.DiveSite) (int64, error) {
	var copied int64
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE divesites RESTART IDENTITY CASCADE`); err != nil {
			return fmt.Errorf("failed to truncate divesites: %w", err)
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"divesites"},
			diveSiteCopyColumns,
			pgx.CopyFromSlice(len(sites), func(i int) ([]any, error) {
				s := sites[i]
				return []any{s.APIID, s.Name, s.Region, s.Lat, s.Lng, s.Ocean, s.Location, s.Country, s.Continent}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to copy divesites: %w", err)
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

func (r *diveSiteRepository) Create(ctx context.Context, site *models.DiveSite) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO divesites (api_id, name, region, lat, lng, ocean, location, country, continent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		site.APIID, site.Name, site.Region, site.Lat, site.Lng, site.Ocean, site.Location, site.Country, site.Continent,
	).Scan(&site.ID)
	if err != nil {
		return fmt.Errorf("failed to create divesite: %w", err)
	}
	return nil
}

func (r *diveSiteRepository) GetByID(ctx context.Context, id int) (*models.DiveSite, error) {
	site, err := scanDiveSite(r.db.QueryRow(ctx, `SELECT `+diveSiteColumns+` FROM divesites WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get divesite: %w", err)
	}
	return &site, nil
}

func (r *diveSiteRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM divesites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete divesite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *diveSiteRepository) InBounds(ctx context.Context, b models.MapBounds) ([]models.DiveSiteMarker, error) {
	lngFilter := `lng BETWEEN $3 AND $4`
	if b.CrossesAntimeridian() {
		lngFilter = `(lng >= $3 OR lng <= $4)`
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, lat, lng
		FROM divesites
		WHERE lat BETWEEN $1 AND $2
		  AND `+lngFilter+`
		ORDER BY id`, b.SWLat, b.NELat, b.SWLng, b.NELng)
	if err != nil {
		return nil, fmt.Errorf("failed to query divesites in bounds: %w", err)
	}
	defer rows.Close()

	markers := []models.DiveSiteMarker{}
	for rows.Next() {
		var m models.DiveSiteMarker
		if err := rows.Scan(&m.ID, &m.Name, &m.Latitude, &m.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan divesite: %w", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating divesites: %w", err)
	}
	return markers, nil
}

func (r *diveSiteRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.DiveSite, int, error) {
	pattern := "%" + escapeLike(query) + "%"

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM divesites WHERE name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count divesites: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+diveSiteColumns+`
		FROM divesites
		WHERE name ILIKE $1
		ORDER BY id
		LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search divesites: %w", err)
	}
	defer rows.Close()

	sites := []models.DiveSite{}
	for rows.Next() {
		site, err := scanDiveSite(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan divesite: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating divesites: %w", err)
	}
	return sites, total, nil
}

func (r *diveSiteRepository) AverageRating(ctx context.Context, id int) (*float64, error) {
	var avg *float64
	err := r.db.QueryRow(ctx, `SELECT AVG(rating)::float8 FROM dives WHERE divesite_id = $1`, id).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg, nil
}
