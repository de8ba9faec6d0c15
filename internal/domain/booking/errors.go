package booking

import (
	"errors"
)

// 失敗区分ごとのエラー定義
var (
	ErrValidation          = errors.New("リクエストが不正です")
	ErrUnauthenticated     = errors.New("認証されていません")
	ErrSeatUnavailable     = errors.New("座席は予約できません")
	ErrPricingFailed       = errors.New("料金計算に失敗しました")
	ErrPaymentDeclined     = errors.New("決済に失敗しました")
	ErrPaymentGatewayError = errors.New("決済ゲートウェイでエラーが発生しました")
	ErrLedgerCommitFailed  = errors.New("チケットの作成に失敗しました")
)

// リクエスト検証エラー
var (
	ErrShowIDRequired  = errors.New("公演IDは必須です")
	ErrSeatIDsRequired = errors.New("座席IDは必須です")
	ErrEmptySeatID     = errors.New("空の座席IDは指定できません")
	ErrDuplicateSeatID = errors.New("同じ座席IDが重複しています")
	ErrTooManySeats    = errors.New("一度に予約できる座席数を超えています")
)

// Category は失敗の区分を表す
type Category string

const (
	CategoryValidation  Category = "validation"
	CategoryAuth        Category = "auth"
	CategorySeats       Category = "seats"
	CategoryPricing     Category = "pricing"
	CategoryPayment     Category = "payment"
	CategoryPersistence Category = "persistence"
)

// Error は予約試行の失敗を表す
// Kind は上の区分エラーのいずれか、Cause は原因、State は失敗した時点の状態
type Error struct {
	Kind  error
	Cause error
	State State
}

// Fail は失敗を作成する
func Fail(kind, cause error, state State) *Error {
	return &Error{Kind: kind, Cause: cause, State: state}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Category は失敗区分を返す
func (e *Error) Category() Category {
	switch e.Kind {
	case ErrValidation:
		return CategoryValidation
	case ErrUnauthenticated:
		return CategoryAuth
	case ErrSeatUnavailable:
		return CategorySeats
	case ErrPricingFailed:
		return CategoryPricing
	case ErrPaymentDeclined, ErrPaymentGatewayError:
		return CategoryPayment
	default:
		return CategoryPersistence
	}
}

// Reason はクライアントに返す失敗理由コードを返す
func (e *Error) Reason() string {
	switch e.Kind {
	case ErrValidation:
		return "validation_error"
	case ErrUnauthenticated:
		return "unauthenticated"
	case ErrSeatUnavailable:
		return "seats_unavailable"
	case ErrPricingFailed:
		return "pricing_failed"
	case ErrPaymentDeclined:
		return "payment_declined"
	case ErrPaymentGatewayError:
		return "payment_gateway_error"
	default:
		return "ticket_creation_failed"
	}
}

// Retryable は同じリクエストを新しい試行としてやり直せるかを返す
// 課金済みの試行はやり直せない
func (e *Error) Retryable() bool {
	if e.State == StatePaid {
		return false
	}
	switch e.Kind {
	case ErrSeatUnavailable, ErrPricingFailed, ErrPaymentDeclined, ErrPaymentGatewayError:
		return true
	}
	return false
}

// ReconciliationRequired は課金済みでチケット未発行の状態かを返す
// 失敗区分によらず PAID で失敗した試行が対象になる
func (e *Error) ReconciliationRequired() bool {
	return e.State == StatePaid
}

// AsError は err から *Error を取り出す
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
