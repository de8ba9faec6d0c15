package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound  = errors.New("チケットが見つかりません")
	ErrTicketsRequired = errors.New("チケットが指定されていません")
	ErrSeatAlreadySold = errors.New("座席のチケットは既に発行されています")
)
