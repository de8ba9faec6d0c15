package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   int    `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// BookingStatus は予約失敗の区分に対応するHTTPステータスを返す
// 座席・料金・決済・発券の失敗はいずれも 404 で、reason で区別する
func BookingStatus(be *booking.Error) int {
	switch be.Category() {
	case booking.CategoryValidation:
		return http.StatusBadRequest
	case booking.CategoryAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusNotFound
	}
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
		reason  string
	)

	var he *echo.HTTPError
	if be, ok := booking.AsError(err); ok {
		code = BookingStatus(be)
		// 原因は内部情報を含むため返さない
		message = be.Kind.Error()
		reason = be.Reason()
	} else if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, ErrorResponse{
		Error:  message,
		Code:   code,
		Reason: reason,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
