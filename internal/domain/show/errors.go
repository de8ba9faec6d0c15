package show

import "errors"

// Show ドメインのエラー定義
var (
	ErrShowNotFound     = errors.New("公演が見つかりません")
	ErrShowNameRequired = errors.New("公演名は必須です")
	ErrHallIDRequired   = errors.New("ホールIDは必須です")
	ErrInvalidBasePrice = errors.New("基本料金は0以上である必要があります")
	ErrShowNotOpen      = errors.New("公演の予約受付期間外です")
)
