// Package memory はプロセス内で完結する座席・チケットストア
// 公演ごとの座席アリーナを個別のミューテックスで保護する
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
)

type soldKey struct {
	showID string
	seatID string
}

// arena は1公演分の座席状態
type arena struct {
	mu    sync.Mutex
	seats map[string]*seat.Seat
	order []string
}

// Store はインメモリの状態を保持し、各リポジトリ実装を提供する
// Store 自身は transaction.Manager を実装する
//
// ロック順序は Store.mu → arena.mu。arena.mu を保持したまま Store.mu を取らない
type Store struct {
	mu        sync.RWMutex
	shows     map[string]*show.Show
	arenas    map[string]*arena
	customers map[string]*customer.Customer // key: UserID
	tickets   map[string]*ticket.Ticket
	sold      map[soldKey]string // (公演, 座席) → チケットID
	now       func() time.Time
}

// NewStore は空のストアを作成する
func NewStore() *Store {
	return &Store{
		shows:     make(map[string]*show.Show),
		arenas:    make(map[string]*arena),
		customers: make(map[string]*customer.Customer),
		tickets:   make(map[string]*ticket.Ticket),
		sold:      make(map[soldKey]string),
		now:       time.Now,
	}
}

// AddShow は公演とその座席を登録する
func (s *Store) AddShow(sh *show.Show, seatIDs []string) error {
	if err := sh.Validate(); err != nil {
		return err
	}
	if sh.ID == "" {
		sh.ID = uuid.New().String()
	}

	a := &arena{seats: make(map[string]*seat.Seat, len(seatIDs))}
	for _, id := range seatIDs {
		st := seat.NewSeat(sh.ID, sh.HallID, id)
		if err := st.Validate(); err != nil {
			return err
		}
		if _, dup := a.seats[id]; dup {
			continue
		}
		a.seats[id] = st
		a.order = append(a.order, id)
	}
	sort.Strings(a.order)

	cp := *sh
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows[sh.ID] = &cp
	s.arenas[sh.ID] = a
	return nil
}

// AddCustomer は購入者を登録する（シード用）
func (s *Store) AddCustomer(c *customer.Customer) error {
	return s.Customers().Create(context.Background(), c)
}

func (s *Store) Shows() *ShowRepository         { return &ShowRepository{s: s} }
func (s *Store) Customers() *CustomerRepository { return &CustomerRepository{s: s} }
func (s *Store) Inventory() *SeatInventory      { return &SeatInventory{s: s} }
func (s *Store) Ledger() *TicketLedger          { return &TicketLedger{s: s} }

// ShowRepository は show.Repository のインメモリ実装
type ShowRepository struct{ s *Store }

func (r *ShowRepository) GetByID(ctx context.Context, id string) (*show.Show, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shows[id]
	if !ok {
		return nil, show.ErrShowNotFound
	}
	cp := *sh
	return &cp, nil
}

func (r *ShowRepository) List(ctx context.Context, limit, offset int) ([]*show.Show, error) {
	s := r.s
	s.mu.RLock()
	list := make([]*show.Show, 0, len(s.shows))
	for _, sh := range s.shows {
		cp := *sh
		list = append(list, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].StartsAt.Equal(list[j].StartsAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].StartsAt.Before(list[j].StartsAt)
	})
	return paginate(list, limit, offset), nil
}

// CustomerRepository は customer.Repository のインメモリ実装
type CustomerRepository struct{ s *Store }

func (r *CustomerRepository) GetByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[userID]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.UserID]; ok {
		return customer.ErrCustomerAlreadyExists
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	cp := *c
	s.customers[c.UserID] = &cp
	return nil
}

func (s *Store) arena(showID string) (*arena, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.arenas[showID]
	return a, ok
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

var (
	_ show.Repository     = (*ShowRepository)(nil)
	_ customer.Repository = (*CustomerRepository)(nil)
)
