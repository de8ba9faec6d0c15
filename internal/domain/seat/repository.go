package seat

import (
	"context"
	"time"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

// Inventory は公演ごとの座席状態を管理するインターフェース
// 座席状態の変更はすべてこのインターフェースを経由する
type Inventory interface {
	// GetByShowID は公演の座席一覧を取得する
	GetByShowID(ctx context.Context, showID string) ([]*Seat, error)

	// CountAvailable は公演の空席数を取得する
	CountAvailable(ctx context.Context, showID string) (int, error)

	// CheckAndReserve は指定座席すべてが空席の場合のみ一括で押さえる
	// 1席でも空いていなければ ErrSeatNotAvailable を返し、どの座席も押さえない
	CheckAndReserve(ctx context.Context, showID string, seatIDs []string, holdID string) ([]*Seat, error)

	// Release は holdID が押さえている座席を空席に戻す（冪等）
	Release(ctx context.Context, showID string, seatIDs []string, holdID string) error

	// MarkBooked は holdID が押さえている座席を確定状態にする（トランザクション必須）
	MarkBooked(ctx context.Context, tx transaction.Tx, showID string, seatIDs []string, holdID string) error

	// ReleaseExpired は cutoff より前に押さえられた座席を解放し、公演IDごとの解放数を返す
	ReleaseExpired(ctx context.Context, cutoff time.Time) (map[string]int, error)
}
