package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

type ShowHandler struct {
	service ShowServiceInterface
}

func NewShowHandler(s ShowServiceInterface) *ShowHandler {
	return &ShowHandler{service: s}
}

type ShowResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name" example:"夏の特別公演"`
	HallID      string `json:"hall_id"`
	Venue       string `json:"venue" example:"メインホール"`
	Date        string `json:"date" example:"2025-08-01"`
	Time        string `json:"time" example:"18:30"`
	StartsAt    string `json:"starts_at" example:"2025-08-01T18:30:00+09:00"`
	BasePrice   int    `json:"base_price" example:"1800"`
	BookingOpen bool   `json:"booking_open"`
}

func toShowResponse(s *show.Show) ShowResponse {
	return ShowResponse{
		ID:          s.ID,
		Name:        s.Name,
		HallID:      s.HallID,
		Venue:       s.HallName,
		Date:        s.Date(),
		Time:        s.Time(),
		StartsAt:    s.StartsAt.Format(time.RFC3339),
		BasePrice:   s.BasePrice,
		BookingOpen: s.IsBookingOpen(),
	}
}

// GetByID godoc
// @Summary 公演を取得
// @Tags shows
// @Produce json
// @Param id path string true "公演ID"
// @Success 200 {object} ShowResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /shows/{id} [get]
func (h *ShowHandler) GetByID(c echo.Context) error {
	s, err := h.service.GetShow(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, show.ErrShowNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, show.ErrShowNotFound.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, toShowResponse(s))
}

// List godoc
// @Summary 公演一覧を取得
// @Tags shows
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ShowResponse
// @Router /shows [get]
func (h *ShowHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	shows, err := h.service.ListShows(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]ShowResponse, len(shows))
	for i, s := range shows {
		resp[i] = toShowResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}
