package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
)

// HoldReleaser は放置された座席の押さえを解放するインターフェース
type HoldReleaser interface {
	ReleaseExpiredHolds(ctx context.Context, ttl time.Duration) (int, error)
}

// HoldSweeper は一定間隔で期限切れの押さえを解放するワーカー
// 予約処理の途中でプロセスが落ちた場合に RESERVED のまま残った座席を回収する
type HoldSweeper struct {
	releaser HoldReleaser
	interval time.Duration
	holdTTL  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewHoldSweeper は新しいスイーパーを作成する
// holdTTL は決済タイムアウトより十分長くすること
func NewHoldSweeper(r HoldReleaser, interval, holdTTL time.Duration) *HoldSweeper {
	return &HoldSweeper{
		releaser: r,
		interval: interval,
		holdTTL:  holdTTL,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はスイーパーを開始する。停止するまで戻らない
func (s *HoldSweeper) Start(ctx context.Context) {
	logger.Info("座席押さえスイーパー開始",
		zap.Duration("interval", s.interval),
		zap.Duration("hold_ttl", s.holdTTL),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("座席押さえスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("座席押さえスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止し、実行中の掃除が終わるまで待つ
func (s *HoldSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

func (s *HoldSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れの押さえを確認")

	count, err := s.releaser.ReleaseExpiredHolds(ctx, s.holdTTL)
	if err != nil {
		log.Error("期限切れの押さえの解放に失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れの押さえを解放", zap.Int("count", count))
	}
}
