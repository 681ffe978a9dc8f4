//go:build integration

package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/social-scuba/divelog/pkg/apperrors"
	"github.com/social-scuba/divelog/pkg/models"
)

func TestBuddyRepository_AddListRemove(t *testing.T) {
	tc := setupRepoTest(t)
	repo := NewBuddyRepository(tc.db)
	alice := tc.createUser("alice")
	bob := tc.createUser("bob")
	carol := tc.createUser("carol")

	require.NoError(t, repo.Add(tc.ctx, alice.ID, bob.ID))
	require.NoError(t, repo.Add(tc.ctx, alice.ID, bob.ID), "adding twice is a no-op")
	require.NoError(t, repo.Add(tc.ctx, alice.ID, carol.ID))
	require.NoError(t, repo.Add(tc.ctx, carol.ID, alice.ID))

	buddies, err := repo.ListBuddies(tc.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{bob.Summary(), carol.Summary()}, buddies)

	of, err := repo.ListBuddiesOf(tc.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{carol.Summary()}, of)

	ok, err := repo.IsBuddy(tc.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsBuddy(tc.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := repo.BuddyIDs(tc.ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{bob.ID, carol.ID}, ids)

	require.NoError(t, repo.Remove(tc.ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, repo.Remove(tc.ctx, alice.ID, bob.ID), apperrors.ErrNotFound)
}

func TestBuddyRepository_AddErrors(t *testing.T) {
	tc := setupRepoTest(t)
	repo := NewBuddyRepository(tc.db)
	alice := tc.createUser("alice")

	assert.ErrorIs(t, repo.Add(tc.ctx, alice.ID, alice.ID+999), apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Add(tc.ctx, alice.ID, alice.ID), apperrors.ErrInvalidInput)
}

func TestBuddyRepository_DeletedUserDropsRelations(t *testing.T) {
	tc := setupRepoTest(t)
	repo := NewBuddyRepository(tc.db)
	alice := tc.createUser("alice")
	bob := tc.createUser("bob")
	require.NoError(t, repo.Add(tc.ctx, alice.ID, bob.ID))

	require.NoError(t, NewUserRepository(tc.db).Delete(tc.ctx, bob.ID))

	buddies, err := repo.ListBuddies(tc.ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, buddies)
}
