package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

// SeatInventory は seat.Inventory のインメモリ実装
// 座席状態の変更は公演ごとのアリーナロック下でのみ行う
type SeatInventory struct{ s *Store }

func (r *SeatInventory) GetByShowID(ctx context.Context, showID string) ([]*seat.Seat, error) {
	a, ok := r.s.arena(showID)
	if !ok {
		return []*seat.Seat{}, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	seats := make([]*seat.Seat, 0, len(a.order))
	for _, id := range a.order {
		seats = append(seats, cloneSeat(a.seats[id]))
	}
	return seats, nil
}

func (r *SeatInventory) CountAvailable(ctx context.Context, showID string) (int, error) {
	a, ok := r.s.arena(showID)
	if !ok {
		return 0, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for _, st := range a.seats {
		if st.IsAvailable() {
			count++
		}
	}
	return count, nil
}

// CheckAndReserve は全座席の空き確認と押さえをアリーナロック1回の中で行う
func (r *SeatInventory) CheckAndReserve(ctx context.Context, showID string, seatIDs []string, holdID string) ([]*seat.Seat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(seatIDs) == 0 {
		return nil, seat.ErrSeatIDRequired
	}
	a, ok := r.s.arena(showID)
	if !ok {
		return nil, fmt.Errorf("%w: 公演 %s に座席がありません", seat.ErrSeatNotAvailable, showID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range seatIDs {
		st, ok := a.seats[id]
		if !ok || !st.IsAvailable() {
			return nil, fmt.Errorf("%w: %s", seat.ErrSeatNotAvailable, id)
		}
	}

	now := r.s.now()
	reserved := make([]*seat.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		st := a.seats[id]
		_ = st.Reserve(holdID, now)
		reserved = append(reserved, cloneSeat(st))
	}
	return reserved, nil
}

// Release は holdID が押さえている座席だけを空席に戻す
func (r *SeatInventory) Release(ctx context.Context, showID string, seatIDs []string, holdID string) error {
	a, ok := r.s.arena(showID)
	if !ok {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range seatIDs {
		if st, ok := a.seats[id]; ok {
			st.Release(holdID)
		}
	}
	return nil
}

// MarkBooked は確定をトランザクションに積む。反映は Commit 時
func (r *SeatInventory) MarkBooked(ctx context.Context, tx transaction.Tx, showID string, seatIDs []string, holdID string) error {
	t, err := unwrapTx(r.s, tx)
	if err != nil {
		return err
	}
	a, ok := r.s.arena(showID)
	if !ok {
		return seat.ErrSeatNotReserved
	}

	a.mu.Lock()
	for _, id := range seatIDs {
		st, ok := a.seats[id]
		if !ok || !st.IsHeldBy(holdID) {
			a.mu.Unlock()
			return fmt.Errorf("%w: %s", seat.ErrSeatNotReserved, id)
		}
	}
	a.mu.Unlock()

	ids := make([]string, len(seatIDs))
	copy(ids, seatIDs)
	return t.stageBooking(pendingBooking{showID: showID, seatIDs: ids, holdID: holdID})
}

func (r *SeatInventory) ReleaseExpired(ctx context.Context, cutoff time.Time) (map[string]int, error) {
	r.s.mu.RLock()
	arenas := make(map[string]*arena, len(r.s.arenas))
	for id, a := range r.s.arenas {
		arenas[id] = a
	}
	r.s.mu.RUnlock()

	released := make(map[string]int)
	for showID, a := range arenas {
		if err := ctx.Err(); err != nil {
			return released, err
		}
		a.mu.Lock()
		for _, st := range a.seats {
			if st.ExpireHold(cutoff) {
				released[showID]++
			}
		}
		a.mu.Unlock()
	}
	return released, nil
}

func cloneSeat(st *seat.Seat) *seat.Seat {
	cp := *st
	if st.HoldID != nil {
		h := *st.HoldID
		cp.HoldID = &h
	}
	if st.ReservedAt != nil {
		at := *st.ReservedAt
		cp.ReservedAt = &at
	}
	return &cp
}

var _ seat.Inventory = (*SeatInventory)(nil)
