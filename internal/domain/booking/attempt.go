package booking

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// State は予約試行の状態を表す
type State string

const (
	StateStart         State = "START"
	StateSeatsReserved State = "SEATS_RESERVED"
	StatePriced        State = "PRICED"
	StatePaid          State = "PAID"
	StateCommitted     State = "COMMITTED"
	StateFailed        State = "FAILED"
)

// 正常系の遷移。FAILED へはどの非終端状態からでも遷移できる
var transitions = map[State]State{
	StateStart:         StateSeatsReserved,
	StateSeatsReserved: StatePriced,
	StatePriced:        StatePaid,
	StatePaid:          StateCommitted,
}

// Attempt は1回の予約試行を表す
// ID は座席の押さえ（hold）の識別子を兼ねる
// ChargedAmount はゲートウェイが実際に承認した金額
type Attempt struct {
	ID            string
	CustomerID    string
	ShowID        string
	SeatIDs       []string
	State         State
	PricePerSeat  int
	TotalAmount   int
	ChargeID      string
	ChargedAmount int
	TicketIDs     []string
	Failure       *Error
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// NewAttempt は新しい予約試行を作成する。座席IDは昇順に並べ替える
func NewAttempt(customerID string, req Request) *Attempt {
	seatIDs := make([]string, len(req.SeatIDs))
	copy(seatIDs, req.SeatIDs)
	sort.Strings(seatIDs)
	return &Attempt{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		ShowID:     req.ShowID,
		SeatIDs:    seatIDs,
		State:      StateStart,
		StartedAt:  time.Now(),
	}
}

// Advance は次の正常状態へ遷移する
func (a *Attempt) Advance(to State) error {
	if next, ok := transitions[a.State]; !ok || next != to {
		return fmt.Errorf("不正な状態遷移: %s -> %s", a.State, to)
	}
	a.State = to
	if to == StateCommitted {
		a.finish()
	}
	return nil
}

// Fail は試行を失敗状態にし、失敗時点の状態を記録した *Error を返す
func (a *Attempt) Fail(kind, cause error) *Error {
	failure := Fail(kind, cause, a.State)
	a.Failure = failure
	a.State = StateFailed
	a.finish()
	return failure
}

// HoldsSeats は座席を押さえている状態かを返す
func (a *Attempt) HoldsSeats() bool {
	switch a.State {
	case StateSeatsReserved, StatePriced, StatePaid:
		return true
	}
	return false
}

// IsTerminal は終端状態かを返す
func (a *Attempt) IsTerminal() bool {
	return a.State == StateCommitted || a.State == StateFailed
}

func (a *Attempt) finish() {
	now := time.Now()
	a.FinishedAt = &now
}

// Result は予約成功時の結果を表す
type Result struct {
	AttemptID    string
	TicketIDs    []string
	PricePerSeat int
	TotalAmount  int
}

// ReconciliationEvent は課金済みでチケット未発行になった予約試行の記録
// 運用者による照合（返金または手動発券）の対象になる
type ReconciliationEvent struct {
	AttemptID     string    `json:"attempt_id"`
	CustomerID    string    `json:"customer_id"`
	ShowID        string    `json:"show_id"`
	SeatIDs       []string  `json:"seat_ids"`
	ChargeID      string    `json:"charge_id"`
	Amount        int       `json:"amount"`
	ChargedAmount int       `json:"charged_amount"`
	Cause         string    `json:"cause"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewReconciliationEvent は試行から照合イベントを作成する
func NewReconciliationEvent(a *Attempt, cause error) ReconciliationEvent {
	ev := ReconciliationEvent{
		AttemptID:     a.ID,
		CustomerID:    a.CustomerID,
		ShowID:        a.ShowID,
		SeatIDs:       a.SeatIDs,
		ChargeID:      a.ChargeID,
		Amount:        a.TotalAmount,
		ChargedAmount: a.ChargedAmount,
		OccurredAt:    time.Now().UTC(),
	}
	if cause != nil {
		ev.Cause = cause.Error()
	}
	return ev
}
