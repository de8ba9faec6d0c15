package show

import "time"

// Show は公演（上映回）エンティティを表す
// 登録後は不変として扱う
type Show struct {
	ID        string
	Name      string
	HallID    string
	HallName  string
	StartsAt  time.Time
	BasePrice int // 1席あたりの基本料金
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewShow は新しい公演を作成する
func NewShow(name, hallID, hallName string, startsAt time.Time, basePrice int) *Show {
	now := time.Now()
	return &Show{
		Name:      name,
		HallID:    hallID,
		HallName:  hallName,
		StartsAt:  startsAt,
		BasePrice: basePrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsBookingOpen は予約受付中かを返す（開演前のみ）
func (s *Show) IsBookingOpen() bool {
	return time.Now().Before(s.StartsAt)
}

// Date は公演日を返す
func (s *Show) Date() string {
	return s.StartsAt.Format("2006-01-02")
}

// Time は開演時刻を返す
func (s *Show) Time() string {
	return s.StartsAt.Format("15:04")
}

// Validate は公演の検証を行う
func (s *Show) Validate() error {
	if s.Name == "" {
		return ErrShowNameRequired
	}
	if s.HallID == "" {
		return ErrHallIDRequired
	}
	if s.BasePrice < 0 {
		return ErrInvalidBasePrice
	}
	return nil
}
