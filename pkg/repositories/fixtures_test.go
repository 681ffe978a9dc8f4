//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/social-scuba/divelog/pkg/database"
	"github.com/social-scuba/divelog/pkg/models"
	"github.com/social-scuba/divelog/pkg/testhelpers"
)

// repoTestContext holds a migrated database emptied for one test.
type repoTestContext struct {
	t   *testing.T
	ctx context.Context
	db  *database.DB
}

func setupRepoTest(t *testing.T) *repoTestContext {
	appDB := testhelpers.GetAppDB(t)
	testhelpers.TruncateAll(t, appDB.DB)
	return &repoTestContext{t: t, ctx: context.Background(), db: appDB.DB}
}

func (tc *repoTestContext) createUser(username string) *models.User {
	tc.t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "Last",
	}
	if err := NewUserRepository(tc.db).Create(tc.ctx, user); err != nil {
		tc.t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func (tc *repoTestContext) createSite(name, country, continent string) *models.DiveSite {
	tc.t.Helper()
	lat, lng := 12.1, -68.2
	site := &models.DiveSite{Name: name, Lat: &lat, Lng: &lng}
	if country != "" {
		site.Country = &country
	}
	if continent != "" {
		site.Continent = &continent
	}
	if err := NewDiveSiteRepository(tc.db).Create(tc.ctx, site); err != nil {
		tc.t.Fatalf("failed to create site %s: %v", name, err)
	}
	return site
}

func (tc *repoTestContext) logDive(userID, siteID int, date string, rating int, bottomTime, depth float64) *models.Dive {
	tc.t.Helper()
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		tc.t.Fatalf("bad date %s: %v", date, err)
	}
	dive := &models.Dive{
		UserID:     userID,
		Date:       d,
		DiveSiteID: siteID,
		Rating:     rating,
		BottomTime: bottomTime,
		MaxDepth:   depth,
	}
	if err := NewDiveRepository(tc.db).Create(tc.ctx, dive); err != nil {
		tc.t.Fatalf("failed to log dive: %v", err)
	}
	return dive
}

func strPtr(s string) *string { return &s }

func siteNamed(i int) string { return fmt.Sprintf("Site %02d", i) }
