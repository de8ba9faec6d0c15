package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

func TestShowService_ListShows(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		wantLimit     int
		wantOffset    int
	}{
		{"既定値", 0, 0, defaultShowListLimit, 0},
		{"指定値", 5, 10, 5, 10},
		{"上限", 500, 0, maxShowListLimit, 0},
		{"負のoffset", 10, -1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockShowRepository)
			repo.On("List", mock.Anything, tt.wantLimit, tt.wantOffset).Return([]*show.Show{{ID: "show-1"}}, nil)

			shows, err := NewShowService(repo).ListShows(context.Background(), tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Len(t, shows, 1)
			repo.AssertExpectations(t)
		})
	}
}

func TestShowService_GetShow(t *testing.T) {
	repo := new(MockShowRepository)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, show.ErrShowNotFound)

	_, err := NewShowService(repo).GetShow(context.Background(), "missing")

	assert.ErrorIs(t, err, show.ErrShowNotFound)
}
