package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
)

// CustomerResolver は認証済みユーザーIDを購入者に対応づける
// 初めてのユーザーは通常料金区分で登録する
type CustomerResolver struct {
	customerRepo customer.Repository
}

func NewCustomerResolver(cr customer.Repository) *CustomerResolver {
	return &CustomerResolver{customerRepo: cr}
}

// Resolve は購入者を返す。ユーザーIDが空なら booking.ErrUnauthenticated
func (r *CustomerResolver) Resolve(ctx context.Context, userID string) (*customer.Customer, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, booking.Fail(booking.ErrUnauthenticated, customer.ErrUserIDRequired, booking.StateStart)
	}

	c, err := r.customerRepo.GetByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, customer.ErrCustomerNotFound) {
		return nil, fmt.Errorf("購入者取得に失敗: %w", err)
	}

	c = customer.NewCustomer(userID, customer.TierRegular)
	if err := r.customerRepo.Create(ctx, c); err != nil {
		// 同時リクエストで先に登録された
		if errors.Is(err, customer.ErrCustomerAlreadyExists) {
			return r.customerRepo.GetByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("購入者登録に失敗: %w", err)
	}
	logger.Info("購入者を登録しました", logger.CustomerID(c.ID))
	return c, nil
}
