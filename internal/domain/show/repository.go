package show

import "context"

// Repository は公演リポジトリのインターフェース
type Repository interface {
	// GetByID はIDから公演を取得する
	GetByID(ctx context.Context, id string) (*Show, error)

	// List は公演一覧を開演日時順で取得する
	List(ctx context.Context, limit, offset int) ([]*Show, error)
}
