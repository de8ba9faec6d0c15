package seat

import "time"

// Status は公演ごとの座席の状態を表す
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusBooked    Status = "booked"
)

// Seat は公演ごとの座席エンティティを表す
// ID はホール内の座席ラベル（例: "A1"）で、ShowID と組で一意になる
type Seat struct {
	ShowID     string
	ID         string
	HallID     string
	Status     Status
	HoldID     *string // 予約試行ID
	ReservedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int
}

// NewSeat は新しい空席を作成する
func NewSeat(showID, hallID, seatID string) *Seat {
	now := time.Now()
	return &Seat{
		ShowID:    showID,
		ID:        seatID,
		HallID:    hallID,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAvailable は座席が予約可能かを返す
func (s *Seat) IsAvailable() bool {
	return s.Status == StatusAvailable
}

// IsHeldBy は座席が指定の予約試行に押さえられているかを返す
func (s *Seat) IsHeldBy(holdID string) bool {
	return s.Status == StatusReserved && s.HoldID != nil && *s.HoldID == holdID
}

// Reserve は座席を予約状態にする
func (s *Seat) Reserve(holdID string, at time.Time) error {
	if s.Status != StatusAvailable {
		return ErrSeatNotAvailable
	}
	s.Status = StatusReserved
	s.HoldID = &holdID
	s.ReservedAt = &at
	s.UpdatedAt = at
	s.Version++
	return nil
}

// Book は押さえ済みの座席を確定状態にする（不可逆）
func (s *Seat) Book(holdID string) error {
	if !s.IsHeldBy(holdID) {
		return ErrSeatNotReserved
	}
	s.Status = StatusBooked
	s.UpdatedAt = time.Now()
	s.Version++
	return nil
}

// Release は指定の予約試行が押さえている座席を解放する
// 押さえていない座席に対しては何もしない
func (s *Seat) Release(holdID string) bool {
	if !s.IsHeldBy(holdID) {
		return false
	}
	s.expire()
	return true
}

// ExpireHold は期限切れの押さえを解放する
func (s *Seat) ExpireHold(cutoff time.Time) bool {
	if s.Status != StatusReserved || s.ReservedAt == nil || !s.ReservedAt.Before(cutoff) {
		return false
	}
	s.expire()
	return true
}

func (s *Seat) expire() {
	s.Status = StatusAvailable
	s.HoldID = nil
	s.ReservedAt = nil
	s.UpdatedAt = time.Now()
	s.Version++
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.ShowID == "" {
		return ErrShowIDRequired
	}
	if s.ID == "" {
		return ErrSeatIDRequired
	}
	return nil
}
