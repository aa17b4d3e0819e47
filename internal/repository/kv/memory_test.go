package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "user")
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "user", []byte(`{"id":1}`)))
	got, err := store.Get(ctx, "user")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":1}`), got)

	// Returned slice is a copy; mutating it must not touch stored state.
	got[0] = 'x'
	again, err := store.Get(ctx, "user")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":1}`), again)

	require.NoError(t, store.Delete(ctx, "user"))
	_, err = store.Get(ctx, "user")
	require.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting an absent key is a no-op.
	require.NoError(t, store.Delete(ctx, "user"))
}
