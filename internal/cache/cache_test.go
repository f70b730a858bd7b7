package cache

import (
	"context"
	"testing"
	"time"

	"postboard/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	require.NotNil(t, GetClient())
	t.Cleanup(func() { client = nil })
	return mr
}

func TestAside(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	t.Run("Miss fetches and stores", func(t *testing.T) {
		fetched := 0
		var post models.Post
		err := Aside(ctx, PostKey(1), &post, PostTTL, func() error {
			fetched++
			post = models.Post{ID: 1, Title: "Hello", Text: "body", AuthorID: 2}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, fetched)
		assert.True(t, mr.Exists("post:1"))

		// Second read comes from the cache.
		var again models.Post
		err = Aside(ctx, PostKey(1), &again, PostTTL, func() error {
			fetched++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, fetched)
		assert.Equal(t, "Hello", again.Title)
	})

	t.Run("Fetch error propagates without a cache write", func(t *testing.T) {
		var post models.Post
		err := Aside(ctx, PostKey(2), &post, PostTTL, func() error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, mr.Exists("post:2"))
	})
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(1), models.Post{ID: 1, Title: "x"}, PostTTL))
	require.True(t, mr.Exists("post:1"))

	InvalidatePost(ctx, 1)
	assert.False(t, mr.Exists("post:1"))
}

func TestSetJSONTTL(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(1), models.User{ID: 1, Name: "Alice"}, UserTTL))

	mr.FastForward(UserTTL + time.Second)
	var user models.User
	found, err := GetJSON(ctx, UserKey(1), &user)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSONWithoutClient(t *testing.T) {
	client = nil

	var post models.Post
	found, err := GetJSON(context.Background(), PostKey(1), &post)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(context.Background(), PostKey(1), post, PostTTL))
}
