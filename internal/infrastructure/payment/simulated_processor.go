package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/payment"
)

// SimulatedProcessor は外部APIを使わない決済処理（ローカル開発用）
// limit を超える金額は拒否する
type SimulatedProcessor struct {
	limit int
}

func NewSimulatedProcessor(limit int) *SimulatedProcessor {
	return &SimulatedProcessor{limit: limit}
}

func (p *SimulatedProcessor) Charge(ctx context.Context, req ChargeRequest) (*payment.Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", payment.ErrUnavailable, err)
	}
	if p.limit > 0 && req.Amount > p.limit {
		return nil, fmt.Errorf("%w: 上限 %d を超えています", payment.ErrDeclined, p.limit)
	}
	return &payment.Charge{
		ID:     "sim_" + uuid.New().String(),
		Amount: req.Amount,
		Status: payment.ChargeSucceeded,
	}, nil
}
