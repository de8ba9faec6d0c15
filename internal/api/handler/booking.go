package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-show-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	ShowID string   `json:"show_id" validate:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Seats  []string `json:"seats" validate:"required,min=1,max=20,dive,required" example:"A1,A2"`
}

type BookingResponse struct {
	AttemptID    string   `json:"attempt_id" example:"8f14e45f-ceea-467a-9f0e-2e5b6a1c3d4e"`
	TicketIDs    []string `json:"ticket_ids"`
	PricePerSeat int      `json:"price_per_seat" example:"1800"`
	TotalAmount  int      `json:"total_amount" example:"3600"`
}

// Create godoc
// @Summary 座席を予約する
// @Description 座席の確保・決済・発券を1リクエストで行います
// @Tags bookings
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer トークン"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse "座席確保・料金計算・決済・発券の失敗（reason で区別）"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Book(c.Request().Context(), middleware.UserID(c), booking.Request{
		ShowID:  req.ShowID,
		SeatIDs: req.Seats,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, BookingResponse{
		AttemptID:    result.AttemptID,
		TicketIDs:    result.TicketIDs,
		PricePerSeat: result.PricePerSeat,
		TotalAmount:  result.TotalAmount,
	})
}
