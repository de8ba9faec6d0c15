package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"

	"github.com/sanosuguru/go-show-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
)

const qrCodeSize = 256

type TicketHandler struct {
	service HistoryServiceInterface
}

func NewTicketHandler(s HistoryServiceInterface) *TicketHandler {
	return &TicketHandler{service: s}
}

type HistoryItemResponse struct {
	TicketID string `json:"ticket_id"`
	Show     string `json:"show" example:"夏の特別公演"`
	Venue    string `json:"venue" example:"メインホール"`
	Date     string `json:"date" example:"2025-08-01"`
	Time     string `json:"time" example:"18:30"`
	Seat     string `json:"seat" example:"A1"`
	Price    int    `json:"price" example:"1800"`
}

type HistoryResponse struct {
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"total_pages"`
	Items      []HistoryItemResponse `json:"items"`
}

type TicketSummaryResponse struct {
	Show  string `json:"show"`
	Venue string `json:"venue"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

func toHistoryItemResponse(h *ticket.HistoryEntry) HistoryItemResponse {
	return HistoryItemResponse{
		TicketID: h.TicketID, Show: h.ShowName, Venue: h.VenueName,
		Date: h.ShowDate(), Time: h.ShowTime(), Seat: h.SeatID, Price: h.Price,
	}
}

// History godoc
// @Summary 購入履歴を取得
// @Description 購入済みチケットを新しい順にページ単位で返します
// @Tags tickets
// @Produce json
// @Param page query int false "ページ番号" default(1)
// @Param limit query int false "1ページの件数（最大100）" default(10)
// @Success 200 {object} HistoryResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /tickets/history [get]
func (h *TicketHandler) History(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	p, err := h.service.History(c.Request().Context(), middleware.UserID(c), page, limit)
	if err != nil {
		return err
	}

	items := make([]HistoryItemResponse, len(p.Items))
	for i, it := range p.Items {
		items[i] = toHistoryItemResponse(it)
	}
	return c.JSON(http.StatusOK, HistoryResponse{
		Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages, Items: items,
	})
}

// List godoc
// @Summary 保有チケット一覧
// @Tags tickets
// @Produce json
// @Success 200 {array} TicketSummaryResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	entries, err := h.service.ListAll(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	resp := make([]TicketSummaryResponse, len(entries))
	for i, e := range entries {
		resp[i] = TicketSummaryResponse{Show: e.ShowName, Venue: e.VenueName, Date: e.ShowDate(), Time: e.ShowTime()}
	}
	return c.JSON(http.StatusOK, resp)
}

// QRCode godoc
// @Summary チケットのQRコード
// @Description 本人のチケットのQRコードをPNGで返します
// @Tags tickets
// @Produce png
// @Param id path string true "チケットID"
// @Success 200 {file} binary
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /tickets/{id}/qrcode [get]
func (h *TicketHandler) QRCode(c echo.Context) error {
	t, err := h.service.GetOwnedTicket(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ticket.ErrTicketNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, ticket.ErrTicketNotFound.Error())
		}
		return err
	}

	png, err := qrcode.Encode(qrCodeData(t), qrcode.Medium, qrCodeSize)
	if err != nil {
		return fmt.Errorf("QRコードの生成に失敗: %w", err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// qrCodeData は入場時に照合する文字列
func qrCodeData(t *ticket.Ticket) string {
	return fmt.Sprintf("TICKET:%s:SHOW:%s:SEAT:%s:ISSUED:%s",
		t.ID, t.ShowID, t.SeatID, t.CreatedAt.UTC().Format(time.RFC3339))
}
