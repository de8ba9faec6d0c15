package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// SeatCache は公演ごとの空席数キャッシュ
type SeatCache struct {
	client *redis.Client
}

func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

func (c *SeatCache) GetAvailableCount(ctx context.Context, showID string) (int, error) {
	val, err := c.client.Get(ctx, availableCountKey(showID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

func (c *SeatCache) SetAvailableCount(ctx context.Context, showID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, availableCountKey(showID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は座席状態が変わった公演のキャッシュを消す
func (c *SeatCache) Invalidate(ctx context.Context, showID string) error {
	if err := c.client.Del(ctx, availableCountKey(showID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

// IsMiss はキャッシュミスかを判定する
func (c *SeatCache) IsMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func availableCountKey(showID string) string {
	return fmt.Sprintf("shows:%s:seats:available", showID)
}
