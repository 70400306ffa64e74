package redisstate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

func newTestStore(t *testing.T) (*SuspensionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zerolog.Nop()

	return NewSuspensionStore(client, "test:", 10*time.Minute, &logger), mr
}

func TestSuspensionStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	until := time.Now().Add(time.Minute).Truncate(time.Millisecond)

	require.NoError(t, store.Suspend(ctx, "gpt", domain.StoredProviderID(3), until))
	require.NoError(t, store.Suspend(ctx, "gpt", domain.ServerProviderID(2), until.Add(time.Second)))
	require.NoError(t, store.Suspend(ctx, "claude", domain.StoredProviderID(3), until))

	got, err := store.Suspensions(ctx, "gpt")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.True(t, until.Equal(got[domain.StoredProviderID(3)]))
	assert.True(t, until.Add(time.Second).Equal(got[domain.ServerProviderID(2)]))

	empty, err := store.Suspensions(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSuspensionStore_Overwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := domain.StoredProviderID(1)

	first := time.Now().Add(time.Minute).Truncate(time.Millisecond)
	require.NoError(t, store.Suspend(ctx, "gpt", id, first))
	require.NoError(t, store.Suspend(ctx, "gpt", id, first.Add(-30*time.Second)))

	got, err := store.Suspensions(ctx, "gpt")
	require.NoError(t, err)
	assert.True(t, first.Add(-30*time.Second).Equal(got[id]))
}

func TestSuspensionStore_Retention(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Suspend(ctx, "gpt", domain.StoredProviderID(1), time.Now().Add(time.Minute)))
	assert.Equal(t, 10*time.Minute, mr.TTL("test:suspensions:gpt"))

	require.NoError(t, store.Suspend(ctx, "long", domain.StoredProviderID(1), time.Now().Add(2*time.Hour)))
	assert.Greater(t, mr.TTL("test:suspensions:long"), time.Hour)

	mr.FastForward(11 * time.Minute)

	got, err := store.Suspensions(ctx, "gpt")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuspensionStore_SkipsMalformedFields(t *testing.T) {
	store, mr := newTestStore(t)

	mr.HSet("test:suspensions:gpt", "abc", "1", "5", "soon", "-1", "1700000000000")

	got, err := store.Suspensions(context.Background(), "gpt")
	require.NoError(t, err)

	assert.Equal(t, map[domain.ProviderID]time.Time{
		domain.ServerProviderID(1): time.UnixMilli(1700000000000),
	}, got)
}

func TestSuspensionStore_RedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Suspensions(context.Background(), "gpt")
	assert.Error(t, err)
}
