// Package router はHTTPサーバーのルーティングを組み立てる
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-show-ticket-booking/internal/api"
	"github.com/sanosuguru/go-show-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-show-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/metrics"
)

// Handlers はルートに割り当てるハンドラー一式
type Handlers struct {
	Booking *handler.BookingHandler
	Ticket  *handler.TicketHandler
	Show    *handler.ShowHandler
	Seat    *handler.SeatHandler
	Health  *handler.HealthHandler
}

// Options はルーター全体の設定
type Options struct {
	JWTSecret string
	// Metrics が nil なら /metrics を公開しない
	Metrics     *metrics.Metrics
	MetricsAuth *middleware.MetricsConfig
}

// New はミドルウェアとルートを設定した Echo を返す
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e, opts.Metrics)
	e.Use(middleware.Identity(opts.JWTSecret))

	e.GET("/health", h.Health.Check)
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(opts.MetricsAuth))
	}

	v1 := e.Group("/api/v1")

	v1.GET("/shows", h.Show.List)
	v1.GET("/shows/:id", h.Show.GetByID)
	v1.GET("/shows/:id/seats", h.Seat.GetByShow)
	v1.GET("/shows/:id/seats/available/count", h.Seat.CountAvailable)

	v1.POST("/bookings", h.Booking.Create)

	v1.GET("/tickets", h.Ticket.List)
	v1.GET("/tickets/history", h.Ticket.History)
	v1.GET("/tickets/:id/qrcode", h.Ticket.QRCode)

	return e
}
