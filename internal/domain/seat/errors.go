package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound     = errors.New("座席が見つかりません")
	ErrSeatNotAvailable = errors.New("座席は予約できません")
	ErrSeatNotReserved  = errors.New("座席は予約されていません")
	ErrSeatLocked       = errors.New("座席は他の予約で処理中です")
	ErrShowIDRequired   = errors.New("公演IDは必須です")
	ErrSeatIDRequired   = errors.New("座席IDは必須です")
)
