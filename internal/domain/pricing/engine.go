package pricing

import (
	"errors"
	"fmt"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

var (
	ErrNoSeats       = errors.New("料金計算の対象座席がありません")
	ErrInvalidAmount = errors.New("料金が不正です")
)

// Quote は料金計算結果を表す
type Quote struct {
	PricePerSeat int
	SeatCount    int
	TotalAmount  int
}

// DefaultDiscounts は料金区分ごとの割引率（%）
var DefaultDiscounts = map[customer.Tier]int{
	customer.TierRegular: 0,
	customer.TierMember:  10,
	customer.TierPremium: 20,
}

// Engine は料金ポリシーを表す。副作用はなく、同じ入力には同じ結果を返す
type Engine struct {
	discounts map[customer.Tier]int
}

// NewEngine は料金エンジンを作成する。discounts が nil なら DefaultDiscounts を使う
func NewEngine(discounts map[customer.Tier]int) *Engine {
	if discounts == nil {
		discounts = DefaultDiscounts
	}
	return &Engine{discounts: discounts}
}

// Price は購入者と座席数から1席あたりの料金と合計を計算する
func (e *Engine) Price(c *customer.Customer, sh *show.Show, seatIDs []string) (Quote, error) {
	if len(seatIDs) == 0 {
		return Quote{}, ErrNoSeats
	}
	perSeat := sh.BasePrice * (100 - e.discountFor(c)) / 100
	if perSeat <= 0 {
		return Quote{}, fmt.Errorf("%w: 1席あたり %d", ErrInvalidAmount, perSeat)
	}
	return Quote{
		PricePerSeat: perSeat,
		SeatCount:    len(seatIDs),
		TotalAmount:  perSeat * len(seatIDs),
	}, nil
}

func (e *Engine) discountFor(c *customer.Customer) int {
	if c == nil {
		return 0
	}
	d, ok := e.discounts[c.Tier]
	if !ok || d < 0 || d > 100 {
		return 0
	}
	return d
}
