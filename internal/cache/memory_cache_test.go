package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_PurgeOnlyTouchesNamespace(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, NamespaceKey(NamespaceCompletion, "1_2"), 1, 0))
	require.NoError(t, c.Set(ctx, NamespaceKey(NamespaceCompletion, "1_3"), 1, 0))
	require.NoError(t, c.Set(ctx, NamespaceKey(NamespaceCourseCompletion, "1_2"), 1, 0))

	require.NoError(t, c.Purge(ctx, NamespaceCompletion))

	assert.Equal(t, 0, c.Len(NamespaceCompletion+":"))
	assert.Equal(t, 1, c.Len(NamespaceCourseCompletion+":"))
	assert.Equal(t, []string{NamespaceCompletion}, c.Purges())
}

func TestMemoryCache_GetMiss(t *testing.T) {
	c := NewMemoryCache()
	var v int
	assert.ErrorIs(t, c.Get(context.Background(), "nope", &v), ErrCacheMiss)

	require.NoError(t, c.Set(context.Background(), "yes", 42, 0))
	require.NoError(t, c.Get(context.Background(), "yes", &v))
	assert.Equal(t, 42, v)
}
