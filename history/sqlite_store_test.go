package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLStore(filepath.Join(t.TempDir(), "history.db"), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestSQLStore_AppendAndHistory(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", Turn{Question: "q1", Answer: "a1"}))
	require.NoError(t, store.Append(ctx, "u1", Turn{Question: "q2", Answer: "a2"}))
	require.NoError(t, store.Append(ctx, "u2", Turn{Question: "other", Answer: "x"}))

	turns, err := store.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "q1", turns[0].Question)
	assert.Equal(t, "q2", turns[1].Question)
}

func TestSQLStore_Clear(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "u1", Turn{Question: "q", Answer: "a"}))
	require.NoError(t, store.Append(ctx, "u2", Turn{Question: "keep", Answer: "me"}))
	require.NoError(t, store.Clear(ctx, "u1"))

	turns, err := store.History(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	kept, err := store.History(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestSQLStore_UnknownUserEmpty(t *testing.T) {
	store := newSQLStore(t)

	turns, err := store.History(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, turns)
}
