package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExcluded(t *testing.T) {
	ctx := context.Background()

	t.Run("no blocks yields empty non-nil set", func(t *testing.T) {
		svc := NewVisibilityService(newMemUsers())
		got, err := svc.ResolveExcluded(ctx, "viewer")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("blocking is enforced both ways", func(t *testing.T) {
		users := newMemUsers()
		require.NoError(t, users.Block(ctx, "alice", "bob"))
		svc := NewVisibilityService(users)

		fromAlice, err := svc.ResolveExcluded(ctx, "alice")
		require.NoError(t, err)
		assert.Contains(t, fromAlice, "bob")

		fromBob, err := svc.ResolveExcluded(ctx, "bob")
		require.NoError(t, err)
		assert.Contains(t, fromBob, "alice")
	})

	t.Run("mutual blocks collapse to one entry each", func(t *testing.T) {
		users := newMemUsers()
		require.NoError(t, users.Block(ctx, "alice", "bob"))
		require.NoError(t, users.Block(ctx, "bob", "alice"))
		svc := NewVisibilityService(users)

		got, err := svc.ResolveExcluded(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		users := newMemUsers()
		users.err = errors.New("connection reset")
		svc := NewVisibilityService(users)
		_, err := svc.ResolveExcluded(ctx, "viewer")
		assert.Error(t, err)
	})
}
