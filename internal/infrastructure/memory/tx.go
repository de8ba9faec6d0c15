package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

var (
	ErrTxDone    = errors.New("トランザクションは既に終了しています")
	ErrForeignTx = errors.New("インメモリストア以外のトランザクションです")
)

type pendingBooking struct {
	showID  string
	seatIDs []string
	holdID  string
}

// Tx はコミットまで変更を溜めておくトランザクション
// Commit 時に押さえと販売済み座席を再検証し、全件まとめて反映する
type Tx struct {
	s        *Store
	mu       sync.Mutex
	tickets  []*ticket.Ticket
	bookings []pendingBooking
	done     bool
}

// Begin は新しいトランザクションを開始する
func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{s: s}, nil
}

func unwrapTx(s *Store, tx transaction.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.s != s {
		return nil, ErrForeignTx
	}
	return t, nil
}

func (t *Tx) stageTickets(tickets []*ticket.Ticket) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	for _, tk := range tickets {
		cp := *tk
		t.tickets = append(t.tickets, &cp)
	}
	return nil
}

func (t *Tx) stageBooking(b pendingBooking) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.bookings = append(t.bookings, b)
	return nil
}

// Commit は溜めた変更を検証して反映する
func (t *Tx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true

	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	arenas, err := t.lockArenas()
	if err != nil {
		return err
	}
	defer func() {
		for _, a := range arenas {
			a.mu.Unlock()
		}
	}()

	staged := make(map[soldKey]struct{}, len(t.tickets))
	for _, tk := range t.tickets {
		key := soldKey{showID: tk.ShowID, seatID: tk.SeatID}
		if _, ok := s.sold[key]; ok {
			return fmt.Errorf("%w: %s", ticket.ErrSeatAlreadySold, tk.SeatID)
		}
		if _, ok := staged[key]; ok {
			return fmt.Errorf("%w: %s", ticket.ErrSeatAlreadySold, tk.SeatID)
		}
		staged[key] = struct{}{}
	}
	for _, b := range t.bookings {
		a := s.arenas[b.showID]
		for _, id := range b.seatIDs {
			st, ok := a.seats[id]
			if !ok || !st.IsHeldBy(b.holdID) {
				return fmt.Errorf("%w: %s", seat.ErrSeatNotReserved, id)
			}
		}
	}

	for _, tk := range t.tickets {
		s.tickets[tk.ID] = tk
		s.sold[soldKey{showID: tk.ShowID, seatID: tk.SeatID}] = tk.ID
	}
	for _, b := range t.bookings {
		a := s.arenas[b.showID]
		for _, id := range b.seatIDs {
			_ = a.seats[id].Book(b.holdID)
		}
	}
	return nil
}

// lockArenas は変更対象のアリーナを公演ID順にロックする
func (t *Tx) lockArenas() ([]*arena, error) {
	showIDs := make([]string, 0, len(t.bookings))
	seen := make(map[string]struct{})
	for _, b := range t.bookings {
		if _, ok := seen[b.showID]; ok {
			continue
		}
		seen[b.showID] = struct{}{}
		showIDs = append(showIDs, b.showID)
	}
	sort.Strings(showIDs)

	arenas := make([]*arena, 0, len(showIDs))
	for _, id := range showIDs {
		a, ok := t.s.arenas[id]
		if !ok {
			for _, locked := range arenas {
				locked.mu.Unlock()
			}
			return nil, seat.ErrSeatNotReserved
		}
		a.mu.Lock()
		arenas = append(arenas, a)
	}
	return arenas, nil
}

// Rollback は溜めた変更を破棄する
func (t *Tx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.tickets = nil
	t.bookings = nil
	return nil
}

var _ transaction.Manager = (*Store)(nil)
