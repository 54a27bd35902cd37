package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Direction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	require.NoError(t, s.Follows.Create(ctx, u1.ID, u2.ID))
	require.NoError(t, s.Follows.Create(ctx, u1.ID, u2.ID))

	ok, err := s.Follows.Exists(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Follows.Exists(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	followers, err := s.Follows.Followers(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, u1.ID, followers[0].ID)

	following, err := s.Follows.Following(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, u2.ID, following[0].ID)

	ids, err := s.Follows.FollowingIDs(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{u2.ID}, ids)

	n, err := s.Follows.CountFollowers(ctx, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Follows.CountFollowing(ctx, u2.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFollowRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	require.NoError(t, s.Follows.Create(ctx, u1.ID, u2.ID))
	require.NoError(t, s.Follows.Delete(ctx, u1.ID, u2.ID))
	require.NoError(t, s.Follows.Delete(ctx, u1.ID, u2.ID))

	ok, err := s.Follows.Exists(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
