package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "rec.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.MigrateUp(context.Background()))
	return store
}

func testClubs() []domain.Club {
	founded := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Club{
		{ID: "coding_club", Name: "Coding Club", Category: "Technology", MemberCount: 180, FoundedAt: founded},
		{ID: "game_dev_osu", Name: "Game Development Club", Category: "Technology", MemberCount: 95, FoundedAt: founded},
		{ID: "robotics_club", Name: "Robotics Club", Category: "Engineering", MemberCount: 120, FoundedAt: founded},
		{ID: "dance_club", Name: "Dance Club", Category: "Arts", MemberCount: 60, FoundedAt: founded},
	}
}

func TestSQLiteClubsByCategory(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertClubs(ctx, testClubs()))

	clubs, err := store.ClubsByCategory(ctx, "technology")
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "Coding Club", clubs[0].Name)
	assert.Equal(t, "Game Development Club", clubs[1].Name)
	assert.Equal(t, 2019, clubs[0].FoundedAt.Year())

	unknown, err := store.ClubsByCategory(ctx, "InvalidCategory")
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestSQLiteCandidateClubs(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertClubs(ctx, testClubs()))

	all, err := store.CandidateClubs(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "coding_club", all[0].ID, "ordered by member count")

	filtered, err := store.CandidateClubs(ctx, []string{"ENGINEERING", "Arts"})
	require.NoError(t, err)
	ids := []string{filtered[0].ID, filtered[1].ID}
	assert.ElementsMatch(t, []string{"robotics_club", "dance_club"}, ids)
}

func TestSQLiteInsertClubsIsIdempotent(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertClubs(ctx, testClubs()))
	require.NoError(t, store.InsertClubs(ctx, testClubs()))

	count, err := store.CountClubs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	maxCount, err := store.MaxMemberCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 180, maxCount)
}

func TestSQLiteClubsByIDs(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertClubs(ctx, testClubs()))

	clubs, err := store.ClubsByIDs(ctx, []string{"dance_club", "missing_club", "coding_club"})
	require.NoError(t, err)
	require.Len(t, clubs, 2)

	none, err := store.ClubsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteProfileRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := store.GetProfile(ctx, "osu_12345")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, store.SaveProfile(ctx, &domain.UserProfile{
		UserID:     "osu_12345",
		Favorites:  []string{"coding_club", "robotics_club", "coding_club", "game_dev_osu"},
		Categories: []string{"Technology", "Engineering"},
		UpdatedAt:  now,
	}))

	profile, err := store.GetProfile(ctx, "osu_12345")
	require.NoError(t, err)
	assert.Equal(t, []string{"coding_club", "robotics_club", "game_dev_osu"}, profile.Favorites)
	assert.Equal(t, []string{"Technology", "Engineering"}, profile.Categories)
	assert.True(t, now.Equal(profile.UpdatedAt))

	// second save replaces the favorites list
	require.NoError(t, store.SaveProfile(ctx, &domain.UserProfile{
		UserID:     "osu_12345",
		Favorites:  []string{"coding_club"},
		Categories: []string{"Technology", "Engineering"},
		UpdatedAt:  now.Add(time.Minute),
	}))
	profile, err = store.GetProfile(ctx, "osu_12345")
	require.NoError(t, err)
	assert.Equal(t, []string{"coding_club"}, profile.Favorites)
}

func TestSQLiteProfilePagination(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, id := range []string{"u3", "u1", "u2"} {
		require.NoError(t, store.SaveProfile(ctx, &domain.UserProfile{UserID: id, UpdatedAt: time.Now()}))
	}

	total, err := store.CountProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	first, err := store.ListProfileUserIDs(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, first)

	second, err := store.ListProfileUserIDs(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, second)
}

func TestSQLiteMigrateDown(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.MigrateDown(ctx))
	_, err := store.CountClubs(ctx)
	assert.Error(t, err)

	require.NoError(t, store.MigrateUp(ctx))
	count, err := store.CountClubs(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWaitForDB(t *testing.T) {
	store := newTestSQLiteStore(t)
	require.NoError(t, WaitForDB(context.Background(), store, 3, nil))
}
