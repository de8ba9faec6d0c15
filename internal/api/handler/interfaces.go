package handler

import (
	"context"

	"github.com/sanosuguru/go-show-ticket-booking/internal/application"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
)

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	Book(ctx context.Context, userID string, req booking.Request) (*booking.Result, error)
}

// HistoryServiceInterface は購入履歴サービスのインターフェース
type HistoryServiceInterface interface {
	History(ctx context.Context, userID string, page, limit int) (*application.HistoryPage, error)
	ListAll(ctx context.Context, userID string) ([]*ticket.HistoryEntry, error)
	GetOwnedTicket(ctx context.Context, userID, ticketID string) (*ticket.Ticket, error)
}

// ShowServiceInterface は公演サービスのインターフェース
type ShowServiceInterface interface {
	GetShow(ctx context.Context, id string) (*show.Show, error)
	ListShows(ctx context.Context, limit, offset int) ([]*show.Show, error)
}

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	GetSeatsByShow(ctx context.Context, showID string) ([]*seat.Seat, error)
	CountAvailableSeats(ctx context.Context, showID string) (int, error)
}
