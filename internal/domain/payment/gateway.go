package payment

import (
	"context"
	"errors"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

var (
	ErrDeclined    = errors.New("決済が拒否されました")
	ErrUnavailable = errors.New("決済ゲートウェイに接続できません")
	ErrInvalidBill = errors.New("請求額が不正です")

	// ErrAmountMismatch は承認額が請求額と異なることを表す。課金は成立している
	ErrAmountMismatch = errors.New("承認額が請求額と一致しません")
)

// ChargeStatus は決済結果を表す
type ChargeStatus string

const (
	ChargeSucceeded ChargeStatus = "succeeded"
	ChargeDeclined  ChargeStatus = "declined"
)

// Charge は決済ゲートウェイが承認した決済を表す
type Charge struct {
	ID     string
	Amount int
	Status ChargeStatus
}

// Gateway は外部決済ゲートウェイのインターフェース
// Charge は自動リトライしない。再試行は呼び出し側の新しい予約試行として扱う
type Gateway interface {
	// ComputeBill は購入者と座席から請求額を計算する（副作用なし）
	ComputeBill(ctx context.Context, c *customer.Customer, sh *show.Show, seatIDs []string) (pricing.Quote, error)

	// Charge は amount を課金する。拒否は ErrDeclined、通信失敗は ErrUnavailable を返す
	// ErrAmountMismatch のときは成立した *Charge も合わせて返す
	Charge(ctx context.Context, c *customer.Customer, amount int, reference string) (*Charge, error)
}
