//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	c, err := NewRedisCacheFromURL(ctx, "redis://"+endpoint, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	recs := []domain.ScoredClub{{ClubID: "coding_club", ClubName: "Coding Club", MatchScore: 0.812}}
	q1 := QueryKey([]string{"Technology"}, nil, 10)
	q2 := QueryKey([]string{"Arts"}, nil, 10)

	_, found, err := c.Get(ctx, "osu_12345", q1)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "osu_12345", q1, recs))
	require.NoError(t, c.Set(ctx, "osu_12345", q2, []domain.ScoredClub{}))
	require.NoError(t, c.Set(ctx, "osu_67890", q1, recs))

	got, found, err := c.Get(ctx, "osu_12345", q1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, recs, got)

	empty, found, err := c.Get(ctx, "osu_12345", q2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, empty)

	require.NoError(t, c.ClearUserCache(ctx, "osu_12345"))

	_, found, err = c.Get(ctx, "osu_12345", q1)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Get(ctx, "osu_67890", q1)
	require.NoError(t, err)
	assert.True(t, found, "other users keep their entries")

	ttl, err := c.client.TTL(ctx, buildKey("osu_67890", q1)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestNewRedisCacheFromURLRejectsBadURL(t *testing.T) {
	_, err := NewRedisCacheFromURL(context.Background(), "not-a-url", time.Minute)
	require.Error(t, err)
}
