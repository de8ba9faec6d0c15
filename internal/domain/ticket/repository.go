package ticket

import (
	"context"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

// Ledger は確定済みチケットの台帳インターフェース（追記のみ）
type Ledger interface {
	// Commit はチケットをまとめて記録する（全件成功か全件失敗、トランザクション必須）
	Commit(ctx context.Context, tx transaction.Tx, tickets []*Ticket) error

	// GetByID はIDからチケットを取得する
	GetByID(ctx context.Context, id string) (*Ticket, error)

	// History は購入者の履歴を更新日時の降順、同時刻はID降順で取得する
	History(ctx context.Context, customerID string, limit, offset int) ([]*HistoryEntry, error)

	// CountByCustomer は購入者のチケット数を返す
	CountByCustomer(ctx context.Context, customerID string) (int, error)
}
