// Package payment は料金ポリシーと外部決済処理をまとめた決済ゲートウェイ実装
package payment

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/payment"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

// ChargeRequest は決済処理への課金依頼
type ChargeRequest struct {
	CustomerID string `json:"customer_id"`
	Amount     int    `json:"amount"`
	Reference  string `json:"reference"`
}

// Processor は実際の資金移動を行う決済処理
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (*payment.Charge, error)
}

// Facade は payment.Gateway の実装
// 請求額の計算は料金エンジン、課金は Processor に委譲する
type Facade struct {
	engine    *pricing.Engine
	processor Processor
}

func NewFacade(engine *pricing.Engine, processor Processor) *Facade {
	return &Facade{engine: engine, processor: processor}
}

func (f *Facade) ComputeBill(ctx context.Context, c *customer.Customer, sh *show.Show, seatIDs []string) (pricing.Quote, error) {
	if sh == nil {
		return pricing.Quote{}, fmt.Errorf("%w: 公演がありません", payment.ErrInvalidBill)
	}
	return f.engine.Price(c, sh, seatIDs)
}

func (f *Facade) Charge(ctx context.Context, c *customer.Customer, amount int, reference string) (*payment.Charge, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", payment.ErrInvalidBill, amount)
	}
	req := ChargeRequest{Amount: amount, Reference: reference}
	if c != nil {
		req.CustomerID = c.ID
	}
	return f.processor.Charge(ctx, req)
}

var _ payment.Gateway = (*Facade)(nil)
