package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

type seatRow struct {
	ShowID     string     `db:"show_id"`
	SeatID     string     `db:"seat_id"`
	HallID     string     `db:"hall_id"`
	Status     string     `db:"status"`
	HoldID     *string    `db:"hold_id"`
	ReservedAt *time.Time `db:"reserved_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	Version    int        `db:"version"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ShowID: r.ShowID, ID: r.SeatID, HallID: r.HallID,
		Status: seat.Status(r.Status), HoldID: r.HoldID, ReservedAt: r.ReservedAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

const seatColumns = `show_id, seat_id, hall_id, status, hold_id, reserved_at, created_at, updated_at, version`

// SeatInventory は公演座席の状態を show_seats 表で管理する
type SeatInventory struct{ db *sqlx.DB }

func NewSeatInventory(db *sqlx.DB) *SeatInventory { return &SeatInventory{db: db} }

func (r *SeatInventory) GetByShowID(ctx context.Context, showID string) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM show_seats WHERE show_id = $1 ORDER BY seat_id`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, showID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	return toSeats(rows), nil
}

func (r *SeatInventory) CountAvailable(ctx context.Context, showID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM show_seats WHERE show_id = $1 AND status = 'available'`, showID)
	return count, err
}

// CheckAndReserve は対象行を座席ID順に FOR UPDATE でロックし、
// 全席が空席の場合のみ1回のUPDATEで押さえる
func (r *SeatInventory) CheckAndReserve(ctx context.Context, showID string, seatIDs []string, holdID string) ([]*seat.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, seat.ErrSeatIDRequired
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	var locked []seatRow
	lockQuery := `SELECT ` + seatColumns + ` FROM show_seats WHERE show_id = $1 AND seat_id = ANY($2) ORDER BY seat_id FOR UPDATE`
	if err := tx.SelectContext(ctx, &locked, lockQuery, showID, pq.Array(seatIDs)); err != nil {
		return nil, fmt.Errorf("座席ロック取得に失敗: %w", err)
	}
	if len(locked) != len(seatIDs) {
		return nil, fmt.Errorf("%w: 存在しない座席が含まれています", seat.ErrSeatNotAvailable)
	}
	for _, row := range locked {
		if seat.Status(row.Status) != seat.StatusAvailable {
			return nil, fmt.Errorf("%w: %s", seat.ErrSeatNotAvailable, row.SeatID)
		}
	}

	var reserved []seatRow
	updateQuery := `UPDATE show_seats SET status = 'reserved', hold_id = $3, reserved_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE show_id = $1 AND seat_id = ANY($2) AND status = 'available'
		RETURNING ` + seatColumns
	if err := tx.SelectContext(ctx, &reserved, updateQuery, showID, pq.Array(seatIDs), holdID); err != nil {
		return nil, fmt.Errorf("座席押さえに失敗: %w", err)
	}
	if len(reserved) != len(seatIDs) {
		return nil, seat.ErrSeatNotAvailable
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("座席押さえのコミットに失敗: %w", err)
	}
	return toSeats(reserved), nil
}

// Release は holdID が押さえている座席だけを空席に戻す
func (r *SeatInventory) Release(ctx context.Context, showID string, seatIDs []string, holdID string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `UPDATE show_seats SET status = 'available', hold_id = NULL, reserved_at = NULL, updated_at = NOW(), version = version + 1
		WHERE show_id = $1 AND seat_id = ANY($2) AND status = 'reserved' AND hold_id = $3`
	if _, err := r.db.ExecContext(ctx, query, showID, pq.Array(seatIDs), holdID); err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	return nil
}

func (r *SeatInventory) MarkBooked(ctx context.Context, tx transaction.Tx, showID string, seatIDs []string, holdID string) error {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE show_seats SET status = 'booked', updated_at = NOW(), version = version + 1
		WHERE show_id = $1 AND seat_id = ANY($2) AND status = 'reserved' AND hold_id = $3`
	result, err := sqlxTx.ExecContext(ctx, query, showID, pq.Array(seatIDs), holdID)
	if err != nil {
		return fmt.Errorf("座席確定に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatIDs) {
		return seat.ErrSeatNotReserved
	}
	return nil
}

func (r *SeatInventory) ReleaseExpired(ctx context.Context, cutoff time.Time) (map[string]int, error) {
	query := `UPDATE show_seats SET status = 'available', hold_id = NULL, reserved_at = NULL, updated_at = NOW(), version = version + 1
		WHERE status = 'reserved' AND reserved_at < $1
		RETURNING show_id`
	var showIDs []string
	if err := r.db.SelectContext(ctx, &showIDs, query, cutoff); err != nil {
		return nil, fmt.Errorf("期限切れ座席の解放に失敗: %w", err)
	}
	released := make(map[string]int)
	for _, id := range showIDs {
		released[id]++
	}
	return released, nil
}

func toSeats(rows []seatRow) []*seat.Seat {
	seats := make([]*seat.Seat, len(rows))
	for i := range rows {
		seats[i] = rows[i].toEntity()
	}
	return seats
}

var _ seat.Inventory = (*SeatInventory)(nil)
