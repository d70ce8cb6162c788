package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLShort   = 1 * time.Minute // 짧은 캐시 (피드 페이지)
	TTLDefault = 5 * time.Minute // 기본값
)

// 캐시 키 접두사
const (
	PrefixFeed = "feed:"
)

// ErrMiss is returned by Get when the key does not exist
var ErrMiss = errors.New("cache miss")

// ErrUnavailable is returned when no redis client is configured
var ErrUnavailable = errors.New("redis not available")

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	// 기본 캐시 연산
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// 피드 캐시
	GetFeedPage(ctx context.Context, userID string, page, limit int, dest interface{}) error
	SetFeedPage(ctx context.Context, userID string, page, limit int, data interface{}, ttl time.Duration) error
	InvalidateFeed(ctx context.Context, userID string) error

	// 유틸리티
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 캐시 서비스 생성
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping Redis 연결 테스트
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrUnavailable
	}
	return c.client.Ping(ctx).Err()
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrUnavailable
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete 캐시 삭제
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Exists 캐시 존재 여부 확인
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ========================================
// 피드 캐시
// ========================================

func (c *redisCache) feedKey(userID string, page, limit int) string {
	return fmt.Sprintf("%s%s:%d:%d", PrefixFeed, userID, page, limit)
}

// GetFeedPage 조립된 피드 페이지 조회
func (c *redisCache) GetFeedPage(ctx context.Context, userID string, page, limit int, dest interface{}) error {
	return c.Get(ctx, c.feedKey(userID, page, limit), dest)
}

// SetFeedPage 조립된 피드 페이지 저장
func (c *redisCache) SetFeedPage(ctx context.Context, userID string, page, limit int, data interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLShort
	}
	return c.Set(ctx, c.feedKey(userID, page, limit), data, ttl)
}

// InvalidateFeed 사용자의 모든 피드 페이지 삭제
func (c *redisCache) InvalidateFeed(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixFeed+userID+":*")
}

// ========================================
// 내부 유틸리티
// ========================================

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
