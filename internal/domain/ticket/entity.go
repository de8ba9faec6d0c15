package ticket

import (
	"time"

	"github.com/google/uuid"
)

// Ticket は1公演1座席の確定済みチケットを表す
// 作成後は不変
type Ticket struct {
	ID         string
	CustomerID string
	ShowID     string
	SeatID     string
	Price      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTickets は座席ごとのチケットをまとめて作成する
func NewTickets(customerID, showID string, seatIDs []string, price int) []*Ticket {
	now := time.Now()
	tickets := make([]*Ticket, len(seatIDs))
	for i, seatID := range seatIDs {
		tickets[i] = &Ticket{
			ID:         uuid.New().String(),
			CustomerID: customerID,
			ShowID:     showID,
			SeatID:     seatID,
			Price:      price,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	return tickets
}

// IDs はチケットIDの一覧を返す
func IDs(tickets []*Ticket) []string {
	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	return ids
}

// HistoryEntry は購入履歴の1行（公演情報つき）を表す
type HistoryEntry struct {
	TicketID  string
	ShowID    string
	ShowName  string
	VenueName string
	StartsAt  time.Time
	SeatID    string
	Price     int
	UpdatedAt time.Time
}

// ShowDate は公演日を返す
func (h *HistoryEntry) ShowDate() string {
	return h.StartsAt.Format("2006-01-02")
}

// ShowTime は開演時刻を返す
func (h *HistoryEntry) ShowTime() string {
	return h.StartsAt.Format("15:04")
}
