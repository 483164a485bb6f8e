package history

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, zap.NewNop())
}

func TestRedisStore_AppendAndHistory(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", Turn{Question: "q1", Answer: "a1"}))
	require.NoError(t, store.Append(ctx, "u1", Turn{Question: "q2", Answer: "a2"}))

	turns, err := store.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "q1", turns[0].Question)
	assert.Equal(t, "a2", turns[1].Answer)
}

func TestRedisStore_UsersIsolated(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", Turn{Question: "mine", Answer: "a"}))

	turns, err := store.History(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRedisStore_Clear(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", Turn{Question: "q", Answer: "a"}))
	require.NoError(t, store.Clear(ctx, "u1"))

	turns, err := store.History(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRedisStore_AppendAfterServerGone(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisStore(client, zap.NewNop())

	mr.Close()

	err := store.Append(context.Background(), "u1", Turn{Question: "q", Answer: "a"})
	require.Error(t, err)
}
