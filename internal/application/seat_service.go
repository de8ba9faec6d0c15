package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
	redisinfra "github.com/sanosuguru/go-show-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
)

const (
	seatCacheTTL = 30 * time.Second
)

// SeatCountCache は公演ごとの空席数キャッシュ
type SeatCountCache interface {
	GetAvailableCount(ctx context.Context, showID string) (int, error)
	SetAvailableCount(ctx context.Context, showID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, showID string) error
}

type SeatService struct {
	inventory seat.Inventory
	showRepo  show.Repository
	cache     SeatCountCache
}

func NewSeatService(inv seat.Inventory, sr show.Repository, cache SeatCountCache) *SeatService {
	return &SeatService{inventory: inv, showRepo: sr, cache: cache}
}

// GetSeatsByShow は公演の座席表を返す
func (s *SeatService) GetSeatsByShow(ctx context.Context, showID string) ([]*seat.Seat, error) {
	if _, err := s.showRepo.GetByID(ctx, showID); err != nil {
		return nil, fmt.Errorf("公演取得に失敗: %w", err)
	}
	return s.inventory.GetByShowID(ctx, showID)
}

func (s *SeatService) CountAvailableSeats(ctx context.Context, showID string) (int, error) {
	// キャッシュから取得を試みる
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, showID)
		if err == nil {
			logger.Debug("キャッシュヒット", logger.ShowID(showID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	if _, err := s.showRepo.GetByID(ctx, showID); err != nil {
		return 0, fmt.Errorf("公演取得に失敗: %w", err)
	}
	count, err := s.inventory.CountAvailable(ctx, showID)
	if err != nil {
		return 0, err
	}

	// キャッシュに保存
	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableCount(ctx, showID, count, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}

	return count, nil
}

// InvalidateCache は公演の空席数キャッシュを無効化する
func (s *SeatService) InvalidateCache(ctx context.Context, showID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, showID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}
