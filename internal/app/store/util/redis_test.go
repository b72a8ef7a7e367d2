package util

import (
	"context"
	"testing"
	"time"

	"homenest/internal/app/store/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedisClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestRedisClient_CategoryTreeRoundTrip(t *testing.T) {
	client, _ := testRedisClient(t)
	ctx := context.Background()

	parent := "living-room"
	tree := []entity.Category{
		{
			ID: "living-room", Name: "Living Room",
			Children: []entity.Category{{ID: "vases", Name: "Vases", ParentID: &parent}},
		},
	}

	require.NoError(t, client.SetCategoryTree(ctx, tree, time.Hour))

	got, err := client.GetCategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "living-room", got[0].ID)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "vases", got[0].Children[0].ID)
}

func TestRedisClient_CacheMissReturnsNil(t *testing.T) {
	client, _ := testRedisClient(t)

	got, err := client.GetCategoryTree(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisClient_Invalidate(t *testing.T) {
	client, mr := testRedisClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetCategoryTree(ctx, []entity.Category{{ID: "bedroom"}}, time.Hour))
	require.True(t, mr.Exists("categories:tree"))

	require.NoError(t, client.InvalidateCategoryTree(ctx))

	assert.False(t, mr.Exists("categories:tree"))
}

func TestRedisClient_TTLExpiry(t *testing.T) {
	client, mr := testRedisClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetCategoryTree(ctx, []entity.Category{{ID: "bedroom"}}, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := client.GetCategoryTree(ctx)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisClient_ConnectFailure(t *testing.T) {
	_, err := NewRedisClient("127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
