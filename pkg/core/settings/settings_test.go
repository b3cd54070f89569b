package settings

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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

func TestMissingCaptchaStateIsOff(t *testing.T) {
	p := NewDBProvider(newTestDB(t), time.Minute, false)
	assert.False(t, p.CaptchaEnabled(context.Background()))
}

func TestSeedEnablesCaptchaAndKeepsExisting(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db))

	p := NewDBProvider(db, time.Minute, false)
	assert.True(t, p.CaptchaEnabled(ctx))

	require.NoError(t, p.Set(ctx, CaptchaStateKey, false))
	require.NoError(t, Seed(ctx, db))
	p.Reload()
	assert.False(t, p.CaptchaEnabled(ctx))

	var n int64
	require.NoError(t, db.Model(&SystemConfig{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCaptchaStateIsCachedForTTL(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db))

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := NewDBProvider(db, 30*time.Second, false)
	p.now = func() time.Time { return now }
	require.True(t, p.CaptchaEnabled(ctx))

	// 绕过 Set 直接改库，缓存期内仍返回旧值
	require.NoError(t, db.Model(&SystemConfig{}).Where("config_key = ?", CaptchaStateKey).Update("value", "false").Error)
	now = now.Add(10 * time.Second)
	assert.True(t, p.CaptchaEnabled(ctx))

	now = now.Add(30 * time.Second)
	assert.False(t, p.CaptchaEnabled(ctx))
}

func TestNoCaptchaFlagFollowsDeployment(t *testing.T) {
	p := NewDBProvider(newTestDB(t), time.Minute, false)
	assert.False(t, p.NoCaptchaAuthAllowed(context.Background()))
	p.SetNoCaptchaAuthAllowed(true)
	assert.True(t, p.NoCaptchaAuthAllowed(context.Background()))
}

func TestStatic(t *testing.T) {
	s := NewStatic(true, false)
	ctx := context.Background()
	assert.True(t, s.CaptchaEnabled(ctx))
	assert.False(t, s.NoCaptchaAuthAllowed(ctx))

	s.SetCaptchaEnabled(false)
	s.SetNoCaptchaAuthAllowed(true)
	assert.False(t, s.CaptchaEnabled(ctx))
	assert.True(t, s.NoCaptchaAuthAllowed(ctx))
}
