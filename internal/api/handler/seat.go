package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

type SeatHandler struct {
	service SeatServiceInterface
}

func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

// SeatResponse は座席表の1席。押さえている予約試行は返さない
type SeatResponse struct {
	ID     string `json:"id" example:"A1"`
	ShowID string `json:"show_id"`
	Status string `json:"status" example:"available"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{ID: s.ID, ShowID: s.ShowID, Status: string(s.Status)}
}

func notFoundShow(err error) error {
	if errors.Is(err, show.ErrShowNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, show.ErrShowNotFound.Error())
	}
	return err
}

// GetByShow godoc
// @Summary 公演の座席表
// @Tags seats
// @Produce json
// @Param id path string true "公演ID"
// @Param available query bool false "空席のみ"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /shows/{id}/seats [get]
func (h *SeatHandler) GetByShow(c echo.Context) error {
	seats, err := h.service.GetSeatsByShow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFoundShow(err)
	}
	availableOnly := c.QueryParam("available") == "true"
	resp := make([]SeatResponse, 0, len(seats))
	for _, s := range seats {
		if availableOnly && !s.IsAvailable() {
			continue
		}
		resp = append(resp, toSeatResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}

// CountAvailable godoc
// @Summary 空席数
// @Tags seats
// @Produce json
// @Param id path string true "公演ID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} api.ErrorResponse
// @Router /shows/{id}/seats/available/count [get]
func (h *SeatHandler) CountAvailable(c echo.Context) error {
	count, err := h.service.CountAvailableSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFoundShow(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}
