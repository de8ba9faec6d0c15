package booking

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Validate(t *testing.T) {
	tooMany := make([]string, MaxSeatsPerBooking+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("A%d", i+1)
	}

	tests := []struct {
		name        string
		req         Request
		expectedErr error
	}{
		{"有効なリクエスト", Request{ShowID: "show-1", SeatIDs: []string{"A1", "A2"}}, nil},
		{"公演IDが空", Request{ShowID: " ", SeatIDs: []string{"A1"}}, ErrShowIDRequired},
		{"座席が空", Request{ShowID: "show-1"}, ErrSeatIDsRequired},
		{"空の座席ID", Request{ShowID: "show-1", SeatIDs: []string{"A1", ""}}, ErrEmptySeatID},
		{"座席IDの重複", Request{ShowID: "show-1", SeatIDs: []string{"A1", "A1"}}, ErrDuplicateSeatID},
		{"座席数の上限超過", Request{ShowID: "show-1", SeatIDs: tooMany}, ErrTooManySeats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestNewAttempt(t *testing.T) {
	a := NewAttempt("customer-1", Request{ShowID: "show-1", SeatIDs: []string{"B2", "A1"}})

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, StateStart, a.State)
	assert.Equal(t, []string{"A1", "B2"}, a.SeatIDs)
	assert.False(t, a.HoldsSeats())
	assert.False(t, a.IsTerminal())
}

func TestAttempt_Advance(t *testing.T) {
	t.Run("正常系の遷移を最後まで進められる", func(t *testing.T) {
		a := NewAttempt("customer-1", Request{ShowID: "show-1", SeatIDs: []string{"A1"}})

		require.NoError(t, a.Advance(StateSeatsReserved))
		assert.True(t, a.HoldsSeats())
		require.NoError(t, a.Advance(StatePriced))
		require.NoError(t, a.Advance(StatePaid))
		assert.True(t, a.HoldsSeats())
		require.NoError(t, a.Advance(StateCommitted))

		assert.True(t, a.IsTerminal())
		assert.False(t, a.HoldsSeats())
		assert.NotNil(t, a.FinishedAt)
	})

	t.Run("状態を飛ばせない", func(t *testing.T) {
		a := NewAttempt("customer-1", Request{ShowID: "show-1", SeatIDs: []string{"A1"}})

		assert.Error(t, a.Advance(StatePaid))
		assert.Equal(t, StateStart, a.State)
	})

	t.Run("終端状態からは遷移できない", func(t *testing.T) {
		a := NewAttempt("customer-1", Request{ShowID: "show-1", SeatIDs: []string{"A1"}})
		a.Fail(ErrSeatUnavailable, nil)

		assert.Error(t, a.Advance(StateSeatsReserved))
		assert.Equal(t, StateFailed, a.State)
	})
}

func TestAttempt_Fail(t *testing.T) {
	a := NewAttempt("customer-1", Request{ShowID: "show-1", SeatIDs: []string{"A1"}})
	require.NoError(t, a.Advance(StateSeatsReserved))
	require.NoError(t, a.Advance(StatePriced))
	cause := errors.New("card declined")

	failure := a.Fail(ErrPaymentDeclined, cause)

	assert.Equal(t, StateFailed, a.State)
	assert.Equal(t, StatePriced, failure.State)
	assert.Same(t, failure, a.Failure)
	assert.ErrorIs(t, failure, ErrPaymentDeclined)
	assert.ErrorIs(t, failure, cause)
	assert.True(t, a.IsTerminal())
}

func TestError_Classification(t *testing.T) {
	tests := []struct {
		kind      error
		state     State
		category  Category
		reason    string
		retryable bool
		reconcile bool
	}{
		{ErrValidation, StateStart, CategoryValidation, "validation_error", false, false},
		{ErrUnauthenticated, StateStart, CategoryAuth, "unauthenticated", false, false},
		{ErrSeatUnavailable, StateStart, CategorySeats, "seats_unavailable", true, false},
		{ErrPricingFailed, StateSeatsReserved, CategoryPricing, "pricing_failed", true, false},
		{ErrPaymentDeclined, StatePriced, CategoryPayment, "payment_declined", true, false},
		{ErrPaymentGatewayError, StatePriced, CategoryPayment, "payment_gateway_error", true, false},
		{ErrLedgerCommitFailed, StatePaid, CategoryPersistence, "ticket_creation_failed", false, true},
		{ErrPaymentGatewayError, StatePaid, CategoryPayment, "payment_gateway_error", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.reason+"/"+string(tt.state), func(t *testing.T) {
			e := Fail(tt.kind, nil, tt.state)

			assert.Equal(t, tt.category, e.Category())
			assert.Equal(t, tt.reason, e.Reason())
			assert.Equal(t, tt.retryable, e.Retryable())
			assert.Equal(t, tt.reconcile, e.ReconciliationRequired())
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, ErrSeatUnavailable.Error(), Fail(ErrSeatUnavailable, nil, StateStart).Error())

	e := Fail(ErrPricingFailed, errors.New("zero amount"), StateSeatsReserved)
	assert.True(t, strings.HasPrefix(e.Error(), ErrPricingFailed.Error()))
	assert.Contains(t, e.Error(), "zero amount")
}

func TestAsError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Fail(ErrSeatUnavailable, nil, StateStart))

	be, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrSeatUnavailable, be.Kind)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestNewReconciliationEvent(t *testing.T) {
	a := NewAttempt("cust-1", Request{ShowID: "S1", SeatIDs: []string{"A2", "A1"}})
	a.ChargeID = "ch_1"
	a.TotalAmount = 2000
	a.ChargedAmount = 2000

	ev := NewReconciliationEvent(a, errors.New("insert failed"))

	assert.Equal(t, a.ID, ev.AttemptID)
	assert.Equal(t, "cust-1", ev.CustomerID)
	assert.Equal(t, []string{"A1", "A2"}, ev.SeatIDs)
	assert.Equal(t, "ch_1", ev.ChargeID)
	assert.Equal(t, 2000, ev.Amount)
	assert.Equal(t, 2000, ev.ChargedAmount)
	assert.Equal(t, "insert failed", ev.Cause)
	assert.False(t, ev.OccurredAt.IsZero())
}
