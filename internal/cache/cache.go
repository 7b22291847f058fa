// Package cache はUTC日付バケットのキャッシュを提供する。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/dayline/internal/model"
)

// KeyPrefix はバケットキャッシュのキー接頭辞。
const KeyPrefix = "dayline:bucket:"

// BucketCache はUTC日付バケットのキャッシュインターフェース。
type BucketCache interface {
	// Get はバケットを返す。キャッシュに無い場合はfalseを返す。
	Get(ctx context.Context, country, day string) (*model.Bucket, bool, error)
	// Set はバケットを保存する。
	Set(ctx context.Context, bucket *model.Bucket) error
}

// Key はバケットのキャッシュキーを返す。
func Key(country, day string) string {
	return KeyPrefix + country + ":" + day
}

// RedisCache はRedisを使用したBucketCache。
// まだ見出しが増えうるバケット（前日以降）は短いTTL、締め切られたバケットは長いTTLで保存する。
type RedisCache struct {
	client    *redis.Client
	ttlOpen   time.Duration
	ttlClosed time.Duration
	now       func() time.Time
}

// NewRedisCache はRedisCacheを生成する。
func NewRedisCache(client *redis.Client, ttlOpen, ttlClosed time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		ttlOpen:   ttlOpen,
		ttlClosed: ttlClosed,
		now:       time.Now,
	}
}

// NewRedisCacheFromURL はredis://形式のURLからRedisCacheを生成する。
func NewRedisCacheFromURL(url string, ttlOpen, ttlClosed time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return NewRedisCache(redis.NewClient(opts), ttlOpen, ttlClosed), nil
}

// Ping はRedisへの疎通を確認する。
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close はRedis接続を閉じる。
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get はバケットを返す。キャッシュに無い場合はfalseを返す。
func (c *RedisCache) Get(ctx context.Context, country, day string) (*model.Bucket, bool, error) {
	data, err := c.client.Get(ctx, Key(country, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get bucket from cache: %w", err)
	}

	var b model.Bucket
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached bucket: %w", err)
	}
	if b.Headlines == nil {
		b.Headlines = []model.Headline{}
	}
	if b.Summaries == nil {
		b.Summaries = []model.Summary{}
	}
	return &b, true, nil
}

// Set はバケットをTTL付きで保存する。
func (c *RedisCache) Set(ctx context.Context, bucket *model.Bucket) error {
	data, err := json.Marshal(bucket)
	if err != nil {
		return fmt.Errorf("failed to encode bucket: %w", err)
	}
	if err := c.client.Set(ctx, Key(bucket.Country, bucket.Day), data, c.TTLFor(bucket.Day)).Err(); err != nil {
		return fmt.Errorf("failed to set bucket to cache: %w", err)
	}
	return nil
}

// TTLFor はバケットの日付に応じたTTLを返す。
// UTCで前日以降の日付（または解釈できない日付）はまだ更新されうるため短いTTLになる。
func (c *RedisCache) TTLFor(day string) time.Duration {
	d, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return c.ttlOpen
	}
	today := c.now().UTC().Truncate(24 * time.Hour)
	if !d.Before(today.AddDate(0, 0, -1)) {
		return c.ttlOpen
	}
	return c.ttlClosed
}

// NopCache は何も保存しないBucketCache。REDIS_URL未設定時に使用する。
type NopCache struct{}

// Get は常にキャッシュミスを返す。
func (NopCache) Get(context.Context, string, string) (*model.Bucket, bool, error) {
	return nil, false, nil
}

// Set は何もしない。
func (NopCache) Set(context.Context, *model.Bucket) error {
	return nil
}
