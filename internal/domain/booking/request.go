package booking

import (
	"fmt"
	"strings"
)

// MaxSeatsPerBooking は1回の予約で指定できる最大座席数
const MaxSeatsPerBooking = 20

// Request は予約リクエストを表す
type Request struct {
	ShowID  string
	SeatIDs []string
}

// Validate はリクエストを検証する。座席の予約より前に呼ばれる
func (r Request) Validate() error {
	if strings.TrimSpace(r.ShowID) == "" {
		return Fail(ErrValidation, ErrShowIDRequired, StateStart)
	}
	if len(r.SeatIDs) == 0 {
		return Fail(ErrValidation, ErrSeatIDsRequired, StateStart)
	}
	if len(r.SeatIDs) > MaxSeatsPerBooking {
		return Fail(ErrValidation, fmt.Errorf("%w: 最大%d席", ErrTooManySeats, MaxSeatsPerBooking), StateStart)
	}
	seen := make(map[string]struct{}, len(r.SeatIDs))
	for _, id := range r.SeatIDs {
		if strings.TrimSpace(id) == "" {
			return Fail(ErrValidation, ErrEmptySeatID, StateStart)
		}
		if _, ok := seen[id]; ok {
			return Fail(ErrValidation, fmt.Errorf("%w: %s", ErrDuplicateSeatID, id), StateStart)
		}
		seen[id] = struct{}{}
	}
	return nil
}
