package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

type ticketRow struct {
	ID         string    `db:"id"`
	CustomerID string    `db:"customer_id"`
	ShowID     string    `db:"show_id"`
	SeatID     string    `db:"seat_id"`
	Price      int       `db:"price"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type historyRow struct {
	TicketID  string    `db:"ticket_id"`
	ShowID    string    `db:"show_id"`
	ShowName  string    `db:"show_name"`
	VenueName string    `db:"venue_name"`
	StartsAt  time.Time `db:"starts_at"`
	SeatID    string    `db:"seat_id"`
	Price     int       `db:"price"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TicketLedger はチケット台帳のPostgreSQL実装（INSERTのみ）
type TicketLedger struct{ db *sqlx.DB }

func NewTicketLedger(db *sqlx.DB) *TicketLedger { return &TicketLedger{db: db} }

// Commit はチケットをマルチバリューINSERT1回で記録する
func (r *TicketLedger) Commit(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	if len(tickets) == 0 {
		return ticket.ErrTicketsRequired
	}
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	const cols = 7
	args := make([]interface{}, 0, len(tickets)*cols)
	placeholders := make([]string, 0, len(tickets))
	for i, t := range tickets {
		base := i * cols
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, t.ID, t.CustomerID, t.ShowID, t.SeatID, t.Price, t.CreatedAt, t.UpdatedAt)
	}
	query := `INSERT INTO tickets (id, customer_id, show_id, seat_id, price, created_at, updated_at) VALUES ` +
		strings.Join(placeholders, ", ")

	if _, err := sqlxTx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ticket.ErrSeatAlreadySold
		}
		return fmt.Errorf("チケット記録に失敗: %w", err)
	}
	return nil
}

func (r *TicketLedger) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	var row ticketRow
	query := `SELECT id, customer_id, show_id, seat_id, price, created_at, updated_at FROM tickets WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return &ticket.Ticket{
		ID: row.ID, CustomerID: row.CustomerID, ShowID: row.ShowID, SeatID: row.SeatID,
		Price: row.Price, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *TicketLedger) History(ctx context.Context, customerID string, limit, offset int) ([]*ticket.HistoryEntry, error) {
	query := `SELECT t.id AS ticket_id, t.show_id, s.name AS show_name, h.name AS venue_name, s.starts_at,
		t.seat_id, t.price, t.updated_at
		FROM tickets t
		JOIN shows s ON s.id = t.show_id
		JOIN halls h ON h.id = s.hall_id
		WHERE t.customer_id = $1
		ORDER BY t.updated_at DESC, t.id DESC
		LIMIT $2 OFFSET $3`
	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query, customerID, limit, offset); err != nil {
		return nil, fmt.Errorf("購入履歴取得に失敗: %w", err)
	}
	entries := make([]*ticket.HistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = &ticket.HistoryEntry{
			TicketID: row.TicketID, ShowID: row.ShowID, ShowName: row.ShowName, VenueName: row.VenueName,
			StartsAt: row.StartsAt, SeatID: row.SeatID, Price: row.Price, UpdatedAt: row.UpdatedAt,
		}
	}
	return entries, nil
}

func (r *TicketLedger) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tickets WHERE customer_id = $1`, customerID)
	return count, err
}

var _ ticket.Ledger = (*TicketLedger)(nil)
