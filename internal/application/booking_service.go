package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/payment"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/metrics"
)

const defaultPaymentTimeout = 10 * time.Second

// 処理段階のラベル値
const (
	stageReserve = "reserve"
	stagePricing = "pricing"
	stagePayment = "payment"
	stageCommit  = "commit"
)

// CurrentCustomer はユーザーIDから購入者を解決する
type CurrentCustomer interface {
	Resolve(ctx context.Context, userID string) (*customer.Customer, error)
}

// SeatLocker は座席集合の分散ロック。nil なら使わない
type SeatLocker interface {
	LockSeats(ctx context.Context, showID string, seatIDs []string) (func(context.Context) error, error)
}

// ReconciliationReporter は課金済みでチケット未発行の試行を運用者へ通知する
type ReconciliationReporter interface {
	Report(ctx context.Context, ev booking.ReconciliationEvent) error
}

// BookingService は座席の押さえから発券までを順に進める
type BookingService struct {
	customers      CurrentCustomer
	showRepo       show.Repository
	inventory      seat.Inventory
	ledger         ticket.Ledger
	gateway        payment.Gateway
	txManager      transaction.Manager
	locker         SeatLocker
	cache          SeatCountCache
	reporter       ReconciliationReporter
	metrics        *metrics.Metrics
	paymentTimeout time.Duration
}

func NewBookingService(
	cr CurrentCustomer,
	sr show.Repository,
	inv seat.Inventory,
	ledger ticket.Ledger,
	gw payment.Gateway,
	tm transaction.Manager,
) *BookingService {
	return &BookingService{
		customers:      cr,
		showRepo:       sr,
		inventory:      inv,
		ledger:         ledger,
		gateway:        gw,
		txManager:      tm,
		paymentTimeout: defaultPaymentTimeout,
	}
}

func (s *BookingService) WithSeatLocker(l SeatLocker) *BookingService {
	s.locker = l
	return s
}

func (s *BookingService) WithSeatCache(c SeatCountCache) *BookingService {
	s.cache = c
	return s
}

func (s *BookingService) WithReporter(r ReconciliationReporter) *BookingService {
	s.reporter = r
	return s
}

func (s *BookingService) WithMetrics(m *metrics.Metrics) *BookingService {
	s.metrics = m
	return s
}

// WithPaymentTimeout は決済呼び出しの上限時間を設定する。0以下は無視する
func (s *BookingService) WithPaymentTimeout(d time.Duration) *BookingService {
	if d > 0 {
		s.paymentTimeout = d
	}
	return s
}

// Book は1回の予約試行を実行する
// 成功時は発券したチケットIDと合計金額を返し、失敗時は *booking.Error を返す
// どの失敗経路でも押さえた座席は空席に戻る
func (s *BookingService) Book(ctx context.Context, userID string, req booking.Request) (*booking.Result, error) {
	if err := req.Validate(); err != nil {
		s.recordRejected(err)
		return nil, err
	}

	c, err := s.customers.Resolve(ctx, userID)
	if err != nil {
		s.recordRejected(err)
		return nil, err
	}

	a := booking.NewAttempt(c.ID, req)
	log := logger.With(logger.AttemptID(a.ID), logger.CustomerID(c.ID), logger.ShowID(a.ShowID), logger.SeatIDs(a.SeatIDs))

	sh, err := s.showRepo.GetByID(ctx, a.ShowID)
	if err != nil {
		if errors.Is(err, show.ErrShowNotFound) {
			return nil, s.fail(ctx, log, a, booking.ErrSeatUnavailable, err)
		}
		return nil, s.fail(ctx, log, a, booking.ErrLedgerCommitFailed, fmt.Errorf("公演取得に失敗: %w", err))
	}
	if !sh.IsBookingOpen() {
		return nil, s.fail(ctx, log, a, booking.ErrValidation, show.ErrShowNotOpen)
	}

	// START → SEATS_RESERVED
	if err := s.reserve(ctx, log, a); err != nil {
		return nil, s.fail(ctx, log, a, booking.ErrSeatUnavailable, err)
	}

	// SEATS_RESERVED → PRICED
	start := time.Now()
	quote, err := s.gateway.ComputeBill(ctx, c, sh, a.SeatIDs)
	s.metrics.ObserveStage(stagePricing, start)
	if err != nil {
		return nil, s.fail(ctx, log, a, booking.ErrPricingFailed, err)
	}
	if quote.TotalAmount <= 0 || quote.PricePerSeat <= 0 {
		return nil, s.fail(ctx, log, a, booking.ErrPricingFailed, fmt.Errorf("%w: %d", payment.ErrInvalidBill, quote.TotalAmount))
	}
	a.PricePerSeat = quote.PricePerSeat
	a.TotalAmount = quote.TotalAmount
	if err := a.Advance(booking.StatePriced); err != nil {
		return nil, s.fail(ctx, log, a, booking.ErrPricingFailed, err)
	}

	// PRICED → PAID（自動リトライしない）
	// 承認額が不一致でも課金は成立しているので PAID へ進めてから失敗させる
	charge, err := s.charge(ctx, c, a)
	if charge != nil {
		a.ChargeID = charge.ID
		a.ChargedAmount = charge.Amount
		if advErr := a.Advance(booking.StatePaid); advErr != nil {
			return nil, s.fail(ctx, log, a, booking.ErrLedgerCommitFailed, advErr)
		}
	}
	if err != nil {
		kind := booking.ErrPaymentGatewayError
		if errors.Is(err, payment.ErrDeclined) {
			kind = booking.ErrPaymentDeclined
		}
		return nil, s.fail(ctx, log, a, kind, err)
	}

	// PAID → COMMITTED
	// 課金済みのため呼び出し元の取り消しに関係なく発券まで進める
	tickets := ticket.NewTickets(c.ID, a.ShowID, a.SeatIDs, a.PricePerSeat)
	commitCtx := context.WithoutCancel(ctx)
	start = time.Now()
	err = transaction.Run(commitCtx, s.txManager, func(tx transaction.Tx) error {
		if err := s.ledger.Commit(commitCtx, tx, tickets); err != nil {
			return fmt.Errorf("チケット記録に失敗: %w", err)
		}
		if err := s.inventory.MarkBooked(commitCtx, tx, a.ShowID, a.SeatIDs, a.ID); err != nil {
			return fmt.Errorf("座席確定に失敗: %w", err)
		}
		return nil
	})
	s.metrics.ObserveStage(stageCommit, start)
	if err != nil {
		return nil, s.fail(ctx, log, a, booking.ErrLedgerCommitFailed, err)
	}

	a.TicketIDs = ticket.IDs(tickets)
	if err := a.Advance(booking.StateCommitted); err != nil {
		// 発券済み。状態機械の不整合はログのみ
		log.Error("予約試行の状態遷移に失敗", zap.Error(err))
	}

	s.invalidateCache(ctx, a.ShowID)
	s.metrics.RecordBooking(metrics.ResultSuccess)
	s.metrics.RecordTickets(len(tickets))
	log.Info("予約が確定しました",
		zap.String("state", string(a.State)),
		zap.Strings("ticket_ids", a.TicketIDs),
		logger.Amount(a.TotalAmount),
		logger.ChargeID(a.ChargeID),
	)

	return &booking.Result{
		AttemptID:    a.ID,
		TicketIDs:    a.TicketIDs,
		PricePerSeat: a.PricePerSeat,
		TotalAmount:  a.TotalAmount,
	}, nil
}

// reserve は座席集合を一括で押さえる
// 分散ロックは押さえの間だけ保持し、決済中には持たない
func (s *BookingService) reserve(ctx context.Context, log *zap.Logger, a *booking.Attempt) error {
	start := time.Now()
	defer s.metrics.ObserveStage(stageReserve, start)

	if s.locker != nil {
		unlock, err := s.locker.LockSeats(ctx, a.ShowID, a.SeatIDs)
		switch {
		case errors.Is(err, seat.ErrSeatLocked):
			return err
		case err != nil:
			log.Warn("分散ロックを取得できないためロックなしで続行します", zap.Error(err))
		default:
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					log.Warn("分散ロックの解放に失敗", zap.Error(err))
				}
			}()
		}
	}

	if _, err := s.inventory.CheckAndReserve(ctx, a.ShowID, a.SeatIDs, a.ID); err != nil {
		if !errors.Is(err, seat.ErrSeatNotAvailable) {
			// 結果が不明な失敗。押さえが残っている可能性があるので解放しておく
			s.release(ctx, log, a)
		}
		return err
	}
	return a.Advance(booking.StateSeatsReserved)
}

func (s *BookingService) charge(ctx context.Context, c *customer.Customer, a *booking.Attempt) (*payment.Charge, error) {
	start := time.Now()
	defer s.metrics.ObserveStage(stagePayment, start)

	chargeCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	ch, err := s.gateway.Charge(chargeCtx, c, a.TotalAmount, a.ID)
	if errors.Is(err, payment.ErrAmountMismatch) {
		if ch == nil || ch.Status != payment.ChargeSucceeded {
			return nil, fmt.Errorf("%w: %w", payment.ErrUnavailable, err)
		}
		return ch, err
	}
	if err != nil {
		if chargeCtx.Err() != nil && !errors.Is(err, payment.ErrDeclined) {
			return nil, fmt.Errorf("%w: %w", payment.ErrUnavailable, chargeCtx.Err())
		}
		return nil, err
	}
	if ch == nil || ch.Status != payment.ChargeSucceeded {
		return nil, payment.ErrDeclined
	}
	if ch.Amount != 0 && ch.Amount != a.TotalAmount {
		return ch, fmt.Errorf("%w: 承認額 %d, 請求額 %d", payment.ErrAmountMismatch, ch.Amount, a.TotalAmount)
	}
	return ch, nil
}

// fail は試行を失敗させ、押さえていた座席を解放する
func (s *BookingService) fail(ctx context.Context, log *zap.Logger, a *booking.Attempt, kind, cause error) error {
	held := a.HoldsSeats()
	failure := a.Fail(kind, cause)
	if held {
		s.release(ctx, log, a)
	}
	s.metrics.RecordBooking(failure.Reason())

	if failure.ReconciliationRequired() {
		s.reportReconciliation(ctx, log, a, cause)
		return failure
	}

	log.Warn("予約に失敗しました",
		zap.String("reason", failure.Reason()),
		zap.String("failed_at", string(failure.State)),
		zap.Error(cause),
	)
	return failure
}

func (s *BookingService) release(ctx context.Context, log *zap.Logger, a *booking.Attempt) {
	rctx := context.WithoutCancel(ctx)
	if err := s.inventory.Release(rctx, a.ShowID, a.SeatIDs, a.ID); err != nil {
		log.Error("座席の解放に失敗", zap.Error(err))
		return
	}
	s.metrics.RecordRelease(metrics.ReleaseSourceFailure, len(a.SeatIDs))
	s.invalidateCache(rctx, a.ShowID)
}

func (s *BookingService) reportReconciliation(ctx context.Context, log *zap.Logger, a *booking.Attempt, cause error) {
	s.metrics.RecordReconciliation()
	log.Error("課金済みですがチケットを発行できませんでした",
		zap.Bool("reconciliation_required", true),
		logger.ChargeID(a.ChargeID),
		logger.Amount(a.TotalAmount),
		zap.Int("charged_amount", a.ChargedAmount),
		zap.Error(cause),
	)
	if s.reporter == nil {
		return
	}
	if err := s.reporter.Report(context.WithoutCancel(ctx), booking.NewReconciliationEvent(a, cause)); err != nil {
		log.Error("照合イベントの送信に失敗", zap.Error(err), logger.ChargeID(a.ChargeID))
	}
}

func (s *BookingService) recordRejected(err error) {
	if be, ok := booking.AsError(err); ok {
		s.metrics.RecordBooking(be.Reason())
	}
}

func (s *BookingService) invalidateCache(ctx context.Context, showID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, showID); err != nil {
		logger.Warn("キャッシュ無効化エラー", logger.ShowID(showID), zap.Error(err))
	}
}

// ReleaseExpiredHolds は ttl より長く押さえられたままの座席を解放し、解放した座席数を返す
func (s *BookingService) ReleaseExpiredHolds(ctx context.Context, ttl time.Duration) (int, error) {
	released, err := s.inventory.ReleaseExpired(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("期限切れの押さえの解放に失敗: %w", err)
	}
	n := 0
	for showID, count := range released {
		if count == 0 {
			continue
		}
		n += count
		s.invalidateCache(ctx, showID)
	}
	s.metrics.RecordRelease(metrics.ReleaseSourceExpired, n)
	return n, nil
}
