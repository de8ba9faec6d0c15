package customer

import "errors"

// Customer ドメインのエラー定義
var (
	ErrCustomerNotFound      = errors.New("購入者が見つかりません")
	ErrCustomerAlreadyExists = errors.New("購入者は既に登録されています")
	ErrUserIDRequired        = errors.New("ユーザーIDは必須です")
)
