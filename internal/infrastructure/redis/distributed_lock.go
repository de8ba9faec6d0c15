package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/metrics"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

const releaseScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

const extendScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`

// DistributedLock は Redis を使用した分散ロック
type DistributedLock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// LockManager は分散ロックを管理する
type LockManager struct {
	client   *redis.Client
	newValue func() string
	metrics  *metrics.Metrics
}

func NewLockManager(client *redis.Client, m *metrics.Metrics) *LockManager {
	return &LockManager{
		client:   client,
		newValue: func() string { return uuid.New().String() },
		metrics:  m,
	}
}

// AcquireLock はロックを取得する
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	start := time.Now()
	lockKey := "lock:" + key
	lockValue := m.newValue()

	ok, err := m.client.SetNX(ctx, lockKey, lockValue, ttl).Result()
	m.metrics.ObserveLock("acquire", err == nil && ok, start)
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &DistributedLock{client: m.client, key: lockKey, value: lockValue, ttl: ttl}, nil
}

// AcquireLockWithRetry はリトライ付きでロックを取得する
func (m *LockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (*DistributedLock, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lock, err := m.AcquireLock(ctx, key, ttl)
		if err == nil {
			return lock, nil
		}
		lastErr = err
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		if i == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

// Release はロックを解放する（所有者確認と削除を Lua でアトミックに行う）
func (l *DistributedLock) Release(ctx context.Context) error {
	result, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.value).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// Extend はロックの有効期限を延長する
func (l *DistributedLock) Extend(ctx context.Context, ttl time.Duration) error {
	result, err := l.client.Eval(ctx, extendScript, []string{l.key}, l.value, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("ロック延長に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	l.ttl = ttl
	return nil
}

// Key はロックキーを返す
func (l *DistributedLock) Key() string { return l.key }

// SeatLocker は公演の座席集合単位で分散ロックを取る
// 同じ座席集合への同時リクエストを checkAndReserve の手前で直列化する
// 保持中は ttl の半分ごとにロックを延長する
type SeatLocker struct {
	manager     *LockManager
	ttl         time.Duration
	extendEvery time.Duration
	maxRetries  int
	retryDelay  time.Duration
}

func NewSeatLocker(manager *LockManager, ttl time.Duration) *SeatLocker {
	return &SeatLocker{
		manager:     manager,
		ttl:         ttl,
		extendEvery: ttl / 2,
		maxRetries:  3,
		retryDelay:  100 * time.Millisecond,
	}
}

// LockSeats は座席集合のロックを取得し、解放関数を返す
// 競合で取れなかった場合は seat.ErrSeatLocked を返す
func (s *SeatLocker) LockSeats(ctx context.Context, showID string, seatIDs []string) (func(context.Context) error, error) {
	lock, err := s.manager.AcquireLockWithRetry(ctx, BuildSeatLockKey(showID, seatIDs), s.ttl, s.maxRetries, s.retryDelay)
	if err != nil {
		if errors.Is(err, ErrLockNotAcquired) {
			return nil, fmt.Errorf("%w: %w", seat.ErrSeatLocked, err)
		}
		return nil, err
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go s.keepAlive(lock, stop, done)

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
		})
		start := time.Now()
		err := lock.Release(ctx)
		s.manager.metrics.ObserveLock("release", err == nil, start)
		return err
	}, nil
}

func (s *SeatLocker) keepAlive(lock *DistributedLock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if s.extendEvery <= 0 {
		return
	}
	ticker := time.NewTicker(s.extendEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.extendEvery)
			start := time.Now()
			err := lock.Extend(ctx, s.ttl)
			cancel()
			s.manager.metrics.ObserveLock("extend", err == nil, start)
			if err != nil {
				logger.Warn("座席ロックの延長に失敗", zap.String("key", lock.Key()), zap.Error(err))
				return
			}
		}
	}
}

// BuildSeatLockKey は座席IDをソートしてロックキーを生成する
func BuildSeatLockKey(showID string, seatIDs []string) string {
	sorted := make([]string, len(seatIDs))
	copy(sorted, seatIDs)
	sort.Strings(sorted)
	return "show:" + showID + ":seats:" + strings.Join(sorted, ",")
}
