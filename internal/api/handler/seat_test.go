package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

func seatMap() []*seat.Seat {
	a1 := seat.NewSeat("show-1", "hall-1", "A1")
	a2 := seat.NewSeat("show-1", "hall-1", "A2")
	_ = a2.Reserve("att-1", time.Now())
	a3 := seat.NewSeat("show-1", "hall-1", "A3")
	_ = a3.Reserve("att-2", time.Now())
	_ = a3.Book("att-2")
	return []*seat.Seat{a1, a2, a3}
}

func TestSeatHandler_GetByShow(t *testing.T) {
	e := NewTestEcho()

	tests := []struct {
		name  string
		query string
		want  []SeatResponse
	}{
		{
			name: "全座席",
			want: []SeatResponse{
				{ID: "A1", ShowID: "show-1", Status: "available"},
				{ID: "A2", ShowID: "show-1", Status: "reserved"},
				{ID: "A3", ShowID: "show-1", Status: "booked"},
			},
		},
		{
			name:  "空席のみ",
			query: "?available=true",
			want:  []SeatResponse{{ID: "A1", ShowID: "show-1", Status: "available"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSeatService)
			svc.On("GetSeatsByShow", mock.Anything, "show-1").Return(seatMap(), nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/shows/show-1/seats"+tt.query, nil)
			c, rec := newContext(e, req, "")
			c.SetParamNames("id")
			c.SetParamValues("show-1")
			serve(e, c, NewSeatHandler(svc).GetByShow)

			require.Equal(t, http.StatusOK, rec.Code)
			var resp []SeatResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp)
			// 押さえている予約試行は公開しない
			assert.NotContains(t, rec.Body.String(), "att-1")
		})
	}
}

func TestSeatHandler_CountAvailable(t *testing.T) {
	e := NewTestEcho()

	t.Run("空席数を返す", func(t *testing.T) {
		svc := new(MockSeatService)
		svc.On("CountAvailableSeats", mock.Anything, "show-1").Return(42, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/shows/show-1/seats/available/count", nil)
		c, rec := newContext(e, req, "")
		c.SetParamNames("id")
		c.SetParamValues("show-1")
		serve(e, c, NewSeatHandler(svc).CountAvailable)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":42}`, rec.Body.String())
	})

	t.Run("存在しない公演は404", func(t *testing.T) {
		svc := new(MockSeatService)
		svc.On("CountAvailableSeats", mock.Anything, "missing").Return(0, fmt.Errorf("公演取得に失敗: %w", show.ErrShowNotFound))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/shows/missing/seats/available/count", nil)
		c, rec := newContext(e, req, "")
		c.SetParamNames("id")
		c.SetParamValues("missing")
		serve(e, c, NewSeatHandler(svc).CountAvailable)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
