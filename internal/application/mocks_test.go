package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/payment"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockShowRepository implements show.Repository
type MockShowRepository struct {
	mock.Mock
}

func (m *MockShowRepository) GetByID(ctx context.Context, id string) (*show.Show, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*show.Show), args.Error(1)
}

func (m *MockShowRepository) List(ctx context.Context, limit, offset int) ([]*show.Show, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*show.Show), args.Error(1)
}

// MockSeatInventory implements seat.Inventory
type MockSeatInventory struct {
	mock.Mock
}

func (m *MockSeatInventory) GetByShowID(ctx context.Context, showID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatInventory) CountAvailable(ctx context.Context, showID string) (int, error) {
	args := m.Called(ctx, showID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatInventory) CheckAndReserve(ctx context.Context, showID string, seatIDs []string, holdID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, showID, seatIDs, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatInventory) Release(ctx context.Context, showID string, seatIDs []string, holdID string) error {
	args := m.Called(ctx, showID, seatIDs, holdID)
	return args.Error(0)
}

func (m *MockSeatInventory) MarkBooked(ctx context.Context, tx transaction.Tx, showID string, seatIDs []string, holdID string) error {
	args := m.Called(ctx, tx, showID, seatIDs, holdID)
	return args.Error(0)
}

func (m *MockSeatInventory) ReleaseExpired(ctx context.Context, cutoff time.Time) (map[string]int, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockTicketLedger implements ticket.Ledger
type MockTicketLedger struct {
	mock.Mock
}

func (m *MockTicketLedger) Commit(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	args := m.Called(ctx, tx, tickets)
	return args.Error(0)
}

func (m *MockTicketLedger) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketLedger) History(ctx context.Context, customerID string, limit, offset int) ([]*ticket.HistoryEntry, error) {
	args := m.Called(ctx, customerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.HistoryEntry), args.Error(1)
}

func (m *MockTicketLedger) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	args := m.Called(ctx, customerID)
	return args.Int(0), args.Error(1)
}

// MockGateway implements payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ComputeBill(ctx context.Context, c *customer.Customer, sh *show.Show, seatIDs []string) (pricing.Quote, error) {
	args := m.Called(ctx, c, sh, seatIDs)
	return args.Get(0).(pricing.Quote), args.Error(1)
}

func (m *MockGateway) Charge(ctx context.Context, c *customer.Customer, amount int, reference string) (*payment.Charge, error) {
	args := m.Called(ctx, c, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Charge), args.Error(1)
}

// MockCustomerRepository implements customer.Repository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockCurrentCustomer implements CurrentCustomer
type MockCurrentCustomer struct {
	mock.Mock
}

func (m *MockCurrentCustomer) Resolve(ctx context.Context, userID string) (*customer.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

// MockSeatCache implements SeatCountCache
type MockSeatCache struct {
	mock.Mock
}

func (m *MockSeatCache) GetAvailableCount(ctx context.Context, showID string) (int, error) {
	args := m.Called(ctx, showID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatCache) SetAvailableCount(ctx context.Context, showID string, count int, ttl time.Duration) error {
	args := m.Called(ctx, showID, count, ttl)
	return args.Error(0)
}

func (m *MockSeatCache) Invalidate(ctx context.Context, showID string) error {
	args := m.Called(ctx, showID)
	return args.Error(0)
}

// MockSeatLocker implements SeatLocker
type MockSeatLocker struct {
	mock.Mock
	unlocked int
}

func (m *MockSeatLocker) LockSeats(ctx context.Context, showID string, seatIDs []string) (func(context.Context) error, error) {
	args := m.Called(ctx, showID, seatIDs)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		m.unlocked++
		return nil
	}, nil
}

// MockReporter implements ReconciliationReporter
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, ev booking.ReconciliationEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
