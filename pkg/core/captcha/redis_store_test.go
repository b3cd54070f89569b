package captcha

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreTakeIsSingleUse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &Challenge{Key: "k1", Challenge: "7+2=", Response: "9", CreatedAt: created}))
	assert.True(t, mr.Exists("captcha:k1"))
	assert.Equal(t, ValidFor+5*time.Minute, mr.TTL("captcha:k1"))

	c, err := store.Take(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "7+2=", c.Challenge)
	assert.Equal(t, "9", c.Response)
	assert.True(t, created.Equal(c.CreatedAt))
	assert.False(t, mr.Exists("captcha:k1"))

	_, err = store.Take(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreWithService(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	gen, err := NewGenerator(ModeMath, 0, 0)
	require.NoError(t, err)
	svc := NewService(NewRedisStore(client), gen)
	ctx := context.Background()

	img, err := svc.Issue(ctx)
	require.NoError(t, err)

	raw, err := client.Get(ctx, "captcha:"+img.Key).Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"response"`)
}
