package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/models"
)

type diveFixture struct {
	dives   *mockDiveRepository
	sites   *mockDiveSiteRepository
	buddies *mockBuddyRepository
	svc     DiveService
}

func newDiveFixture(t *testing.T) *diveFixture {
	t.Helper()
	f := &diveFixture{
		dives:   newMockDiveRepository(),
		sites:   newMockDiveSiteRepository(&models.DiveSite{ID: 5, Name: "Blue Hole"}),
		buddies: newMockBuddyRepository(),
	}
	require.NoError(t, f.buddies.Add(context.Background(), 1, 2))
	f.svc = NewDiveService(f.dives, f.sites, f.buddies, zap.NewNop())
	return f
}

func validDiveInput() models.DiveInput {
	return models.DiveInput{
		Date:       "2024-03-04",
		Rating:     8,
		BottomTime: 45,
		MaxDepth:   30,
		DepthUnits: models.UnitsMeters,
		BuddyID:    models.NoBuddy,
		DiveTypes:  []string{"wreck", "deep"},
	}
}

func TestDiveService_LogConvertsMeters(t *testing.T) {
	f := newDiveFixture(t)

	view, err := f.svc.Log(context.Background(), 1, 5, validDiveInput())
	require.NoError(t, err)

	created := f.dives.created
	require.NotNil(t, created)
	assert.InDelta(t, 30*models.FeetPerMeter, created.MaxDepth, 1e-9)
	assert.Nil(t, created.BuddyID)
	assert.Equal(t, 1, created.UserID)
	assert.Equal(t, 5, created.DiveSiteID)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), created.Date)
	assert.Equal(t, models.DiveTypes{Wreck: true, Deep: true}, created.Types)
	assert.Equal(t, []string{"wreck", "deep"}, view.TypeNames)
}

func TestDiveService_LogIgnoresClientDiveNumber(t *testing.T) {
	f := newDiveFixture(t)
	in := validDiveInput()
	n := 77
	in.DiveNo = &n

	_, err := f.svc.Log(context.Background(), 1, 5, in)
	require.NoError(t, err)
	assert.Equal(t, 1, f.dives.created.DiveNo)
}

func TestDiveService_LogWithBuddy(t *testing.T) {
	f := newDiveFixture(t)
	in := validDiveInput()
	in.DepthUnits = models.UnitsFeet
	in.BuddyID = 2

	_, err := f.svc.Log(context.Background(), 1, 5, in)
	require.NoError(t, err)
	require.NotNil(t, f.dives.created.BuddyID)
	assert.Equal(t, 2, *f.dives.created.BuddyID)
	assert.Equal(t, float64(30), f.dives.created.MaxDepth)

	in.BuddyID = 3
	_, err = f.svc.Log(context.Background(), 1, 5, in)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "only your own buddies can be tagged")
}

func TestDiveService_LogValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.DiveInput)
	}{
		{"bad date", func(in *models.DiveInput) { in.Date = "04/03/2024" }},
		{"rating low", func(in *models.DiveInput) { in.Rating = 0 }},
		{"rating high", func(in *models.DiveInput) { in.Rating = 11 }},
		{"bottom time", func(in *models.DiveInput) { in.BottomTime = 601 }},
		{"negative depth", func(in *models.DiveInput) { in.MaxDepth = -1 }},
		{"depth", func(in *models.DiveInput) { in.MaxDepth = 351 }},
		{"units", func(in *models.DiveInput) { in.DepthUnits = "fathoms" }},
		{"dive type", func(in *models.DiveInput) { in.DiveTypes = []string{"reef"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDiveFixture(t)
			in := validDiveInput()
			tt.mutate(&in)

			_, err := f.svc.Log(context.Background(), 1, 5, in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Nil(t, f.dives.created)
		})
	}
}

func TestDiveService_LogUnknownSite(t *testing.T) {
	f := newDiveFixture(t)

	_, err := f.svc.Log(context.Background(), 1, 99, validDiveInput())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDiveService_EditOwnerOnly(t *testing.T) {
	f := newDiveFixture(t)
	f.dives.dives[10] = &models.DiveView{Dive: models.Dive{ID: 10, UserID: 1, DiveNo: 4, DiveSiteID: 5, Rating: 5}}
	ctx := context.Background()

	_, err := f.svc.Edit(ctx, 2, 10, validDiveInput())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Nil(t, f.dives.updated)

	_, err = f.svc.Edit(ctx, 1, 10, validDiveInput())
	require.NoError(t, err)
	assert.Equal(t, 4, f.dives.updated.DiveNo, "dive number kept when not sent")
	assert.Equal(t, 8, f.dives.updated.Rating)

	in := validDiveInput()
	n := 12
	in.DiveNo = &n
	_, err = f.svc.Edit(ctx, 1, 10, in)
	require.NoError(t, err)
	assert.Equal(t, 12, f.dives.updated.DiveNo)

	_, err = f.svc.Edit(ctx, 1, 11, in)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDiveService_DeleteOwnerOnly(t *testing.T) {
	f := newDiveFixture(t)
	f.dives.dives[10] = &models.DiveView{Dive: models.Dive{ID: 10, UserID: 1}}

	assert.ErrorIs(t, f.svc.Delete(context.Background(), 2, 10), apperrors.ErrForbidden)
	require.NoError(t, f.svc.Delete(context.Background(), 1, 10))
	assert.Equal(t, 10, f.dives.deletedID)
}

func TestDiveService_FeedIncludesSelfAndBuddies(t *testing.T) {
	f := newDiveFixture(t)
	f.dives.listed = []models.DiveView{{Dive: models.Dive{ID: 1}}}

	feed, err := f.svc.Feed(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, feed, 1)
	assert.ElementsMatch(t, []int{1, 2}, f.dives.capturedIDs)
	assert.Equal(t, ProfileDiveLimit, f.dives.capturedLimit)
}
