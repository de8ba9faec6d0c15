package customer

import "context"

// Repository は購入者リポジトリのインターフェース
type Repository interface {
	// GetByUserID は認証ユーザーIDから購入者を取得する
	GetByUserID(ctx context.Context, userID string) (*Customer, error)

	// Create は購入者を登録する。同じ UserID が既にあれば ErrCustomerAlreadyExists
	Create(ctx context.Context, c *Customer) error
}
