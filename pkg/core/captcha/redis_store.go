package captcha

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps challenges as JSON under prefix+key. The TTL outlives the
// validity window so an expired challenge is still seen (and reported as
// expired) rather than silently missing.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "captcha:",
		ttl:    ValidFor + 5*time.Minute,
	}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Save(ctx context.Context, c *Challenge) error {
	data, err := sonic.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode captcha: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+c.Key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store captcha: %w", err)
	}
	return nil
}

// Take 使用 GETDEL，读取与删除是同一条命令
func (s *RedisStore) Take(ctx context.Context, key string) (*Challenge, error) {
	data, err := s.client.GetDel(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take captcha: %w", err)
	}

	var c Challenge
	if err := sonic.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode captcha: %w", err)
	}
	return &c, nil
}
