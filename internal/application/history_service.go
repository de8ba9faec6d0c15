package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
)

const (
	DefaultHistoryPage  = 1
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// HistoryPage は購入履歴の1ページ
type HistoryPage struct {
	Items      []*ticket.HistoryEntry
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// HistoryService は購入者のチケット参照を扱う
type HistoryService struct {
	customers CurrentCustomer
	ledger    ticket.Ledger
}

func NewHistoryService(cr CurrentCustomer, ledger ticket.Ledger) *HistoryService {
	return &HistoryService{customers: cr, ledger: ledger}
}

// History は購入履歴を新しい順に1ページ分返す
// page が1未満なら1ページ目、最終ページを超えたら最終ページを返す
func (s *HistoryService) History(ctx context.Context, userID string, page, limit int) (*HistoryPage, error) {
	c, err := s.customers.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if page < 1 {
		page = DefaultHistoryPage
	}

	total, err := s.ledger.CountByCustomer(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("チケット数の取得に失敗: %w", err)
	}
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	items := []*ticket.HistoryEntry{}
	if total > 0 {
		items, err = s.ledger.History(ctx, c.ID, limit, (page-1)*limit)
		if err != nil {
			return nil, fmt.Errorf("購入履歴の取得に失敗: %w", err)
		}
	}

	return &HistoryPage{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// ListAll は購入者の全チケットを返す
func (s *HistoryService) ListAll(ctx context.Context, userID string) ([]*ticket.HistoryEntry, error) {
	c, err := s.customers.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.ledger.CountByCustomer(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("チケット数の取得に失敗: %w", err)
	}
	if total == 0 {
		return []*ticket.HistoryEntry{}, nil
	}
	items, err := s.ledger.History(ctx, c.ID, total, 0)
	if err != nil {
		return nil, fmt.Errorf("チケット一覧の取得に失敗: %w", err)
	}
	return items, nil
}

// GetOwnedTicket は購入者本人のチケットを返す
// 他人のチケットは存在しないものとして扱う
func (s *HistoryService) GetOwnedTicket(ctx context.Context, userID, ticketID string) (*ticket.Ticket, error) {
	c, err := s.customers.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	t, err := s.ledger.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.CustomerID != c.ID {
		return nil, ticket.ErrTicketNotFound
	}
	return t, nil
}
