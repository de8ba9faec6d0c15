package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

// TicketLedger は ticket.Ledger のインメモリ実装
type TicketLedger struct{ s *Store }

// Commit はチケットをトランザクションに積む。反映は Commit 時
func (r *TicketLedger) Commit(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	if len(tickets) == 0 {
		return ticket.ErrTicketsRequired
	}
	t, err := unwrapTx(r.s, tx)
	if err != nil {
		return err
	}

	r.s.mu.RLock()
	for _, tk := range tickets {
		if _, sold := r.s.sold[soldKey{showID: tk.ShowID, seatID: tk.SeatID}]; sold {
			r.s.mu.RUnlock()
			return fmt.Errorf("%w: %s", ticket.ErrSeatAlreadySold, tk.SeatID)
		}
	}
	r.s.mu.RUnlock()

	return t.stageTickets(tickets)
}

func (r *TicketLedger) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tk, ok := r.s.tickets[id]
	if !ok {
		return nil, ticket.ErrTicketNotFound
	}
	cp := *tk
	return &cp, nil
}

func (r *TicketLedger) History(ctx context.Context, customerID string, limit, offset int) ([]*ticket.HistoryEntry, error) {
	r.s.mu.RLock()
	entries := make([]*ticket.HistoryEntry, 0)
	for _, tk := range r.s.tickets {
		if tk.CustomerID != customerID {
			continue
		}
		e := &ticket.HistoryEntry{
			TicketID:  tk.ID,
			ShowID:    tk.ShowID,
			SeatID:    tk.SeatID,
			Price:     tk.Price,
			UpdatedAt: tk.UpdatedAt,
		}
		if sh, ok := r.s.shows[tk.ShowID]; ok {
			e.ShowName = sh.Name
			e.VenueName = sh.HallName
			e.StartsAt = sh.StartsAt
		}
		entries = append(entries, e)
	}
	r.s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].TicketID > entries[j].TicketID
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return paginate(entries, limit, offset), nil
}

func (r *TicketLedger) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, tk := range r.s.tickets {
		if tk.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

var _ ticket.Ledger = (*TicketLedger)(nil)
