package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionRevocation(t *testing.T) {
	r := NewInMemorySessionRevocation()
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "sess-1", time.Minute))

	revoked, err = r.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "sess-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemorySessionRevocation_Expires(t *testing.T) {
	r := NewInMemorySessionRevocation()
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "sess-1", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	revoked, err := r.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemorySessionRevocation_NonPositiveTTLIgnored(t *testing.T) {
	r := NewInMemorySessionRevocation()
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "sess-1", 0))

	revoked, err := r.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
