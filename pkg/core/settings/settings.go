// Package settings 运行期开关：验证码开关存放在 system_config 表，免验证码签发开关来自部署配置。
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bizerr "admin-gateway/pkg/common/errors"
)

const CaptchaStateKey = "base.captcha_state"

// Provider 登录流程读取的两个开关
type Provider interface {
	CaptchaEnabled(ctx context.Context) bool
	NoCaptchaAuthAllowed(ctx context.Context) bool
}

// SystemConfig 键值配置，value 为 JSON 字面量
type SystemConfig struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Key       string    `gorm:"column:config_key;type:varchar(100);uniqueIndex;not null"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SystemConfig) TableName() string {
	return "system_config"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SystemConfig{})
}

// Static 固定值实现，测试和无数据库场景使用
type Static struct {
	captcha   atomic.Bool
	noCaptcha atomic.Bool
}

func NewStatic(captchaEnabled, noCaptchaAuth bool) *Static {
	s := &Static{}
	s.captcha.Store(captchaEnabled)
	s.noCaptcha.Store(noCaptchaAuth)
	return s
}

func (s *Static) CaptchaEnabled(context.Context) bool       { return s.captcha.Load() }
func (s *Static) NoCaptchaAuthAllowed(context.Context) bool { return s.noCaptcha.Load() }

func (s *Static) SetCaptchaEnabled(v bool)       { s.captcha.Store(v) }
func (s *Static) SetNoCaptchaAuthAllowed(v bool) { s.noCaptcha.Store(v) }

// DBProvider 从 system_config 读取验证码开关并缓存 ttl
type DBProvider struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	captcha  bool
	loadedAt time.Time
	loaded   bool

	noCaptcha atomic.Bool
}

func NewDBProvider(db *gorm.DB, ttl time.Duration, noCaptchaAuth bool) *DBProvider {
	p := &DBProvider{db: db, ttl: ttl, now: time.Now}
	p.noCaptcha.Store(noCaptchaAuth)
	return p
}

func (p *DBProvider) CaptchaEnabled(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded && p.now().Sub(p.loadedAt) < p.ttl {
		return p.captcha
	}
	v, err := p.readBool(ctx, CaptchaStateKey)
	if err != nil {
		// 读取失败时沿用上次的值，首次失败按开启处理
		hlog.CtxErrorf(ctx, "read %s failed: %v", CaptchaStateKey, err)
		if !p.loaded {
			return true
		}
		return p.captcha
	}
	p.captcha, p.loadedAt, p.loaded = v, p.now(), true
	return v
}

func (p *DBProvider) NoCaptchaAuthAllowed(context.Context) bool {
	return p.noCaptcha.Load()
}

// SetNoCaptchaAuthAllowed 配置热更新时调用
func (p *DBProvider) SetNoCaptchaAuthAllowed(v bool) {
	p.noCaptcha.Store(v)
}

// Reload 丢弃缓存，下次读取时回源
func (p *DBProvider) Reload() {
	p.mu.Lock()
	p.loaded = false
	p.mu.Unlock()
}

// Set 写入一个键值，value 会编码为 JSON
func (p *DBProvider) Set(ctx context.Context, key string, value interface{}) error {
	if err := upsert(ctx, p.db, key, value); err != nil {
		return err
	}
	p.Reload()
	return nil
}

// readBool 不存在的键视为 false
func (p *DBProvider) readBool(ctx context.Context, key string) (bool, error) {
	var row SystemConfig
	err := p.db.WithContext(ctx).Where("config_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, bizerr.WrapGormError(err)
	}
	var v bool
	if err := sonic.UnmarshalString(row.Value, &v); err != nil {
		return false, fmt.Errorf("decode %s=%q: %w", key, row.Value, err)
	}
	return v, nil
}

// Seed 写入默认配置，已存在的键保持不变
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "config_key"}}, DoNothing: true}).
		Create(&SystemConfig{Key: CaptchaStateKey, Value: "true"}).Error
}

func upsert(ctx context.Context, db *gorm.DB, key string, value interface{}) error {
	raw, err := sonic.MarshalString(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&SystemConfig{Key: key, Value: raw}).Error
	return bizerr.WrapGormError(err)
}
