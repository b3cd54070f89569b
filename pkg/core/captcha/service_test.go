package captcha

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	bizerr "admin-gateway/pkg/common/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, Store, *clock) {
	t.Helper()
	gen, err := NewGenerator(ModeRandom, 120, 40)
	require.NoError(t, err)
	store := NewGormStore(newTestDB(t))
	clk := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	return NewService(store, gen, WithClock(clk.now)), store, clk
}

func save(t *testing.T, store Store, key string, created time.Time) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), &Challenge{
		Key: key, Challenge: "AB3K", Response: "ab3k", CreatedAt: created,
	}))
}

func TestIssuePersistsChallenge(t *testing.T) {
	svc, store, _ := newTestService(t)

	img, err := svc.Issue(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, img.Key)
	require.True(t, strings.HasPrefix(img.ImageBase64, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(img.ImageBase64, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(raw[:4]))

	c, err := store.Take(context.Background(), img.Key)
	require.NoError(t, err)
	assert.Len(t, c.Challenge, textLength)
	assert.Equal(t, strings.ToLower(c.Challenge), c.Response)
}

func TestVerifyAcceptsEitherValue(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	save(t, store, "k1", clk.t)
	assert.NoError(t, svc.Verify(ctx, "k1", "ab3k"))

	save(t, store, "k2", clk.t)
	assert.NoError(t, svc.Verify(ctx, "k2", "AB3K"))
}

func TestVerifyIsCaseSensitive(t *testing.T) {
	svc, store, clk := newTestService(t)

	save(t, store, "k1", clk.t)
	assert.ErrorIs(t, svc.Verify(context.Background(), "k1", "Ab3k"), bizerr.ErrCaptchaIncorrect)
}

func TestVerifyConsumesChallenge(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	save(t, store, "ok", clk.t)
	require.NoError(t, svc.Verify(ctx, "ok", "ab3k"))
	assert.ErrorIs(t, svc.Verify(ctx, "ok", "ab3k"), bizerr.ErrCaptchaExpired)

	save(t, store, "bad", clk.t)
	require.ErrorIs(t, svc.Verify(ctx, "bad", "zzzz"), bizerr.ErrCaptchaIncorrect)
	assert.ErrorIs(t, svc.Verify(ctx, "bad", "ab3k"), bizerr.ErrCaptchaExpired)
}

func TestVerifyExpired(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	save(t, store, "old", clk.t.Add(-6*time.Minute))
	assert.ErrorIs(t, svc.Verify(ctx, "old", "ab3k"), bizerr.ErrCaptchaExpired)

	_, err := store.Take(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	save(t, store, "edge", clk.t.Add(-ValidFor))
	assert.NoError(t, svc.Verify(ctx, "edge", "ab3k"))
}

func TestVerifyUnknownKey(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.ErrorIs(t, svc.Verify(context.Background(), "", "ab3k"), bizerr.ErrCaptchaExpired)
	assert.ErrorIs(t, svc.Verify(context.Background(), "missing", "ab3k"), bizerr.ErrCaptchaExpired)
}
