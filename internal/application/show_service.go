package application

import (
	"context"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

const (
	defaultShowListLimit = 20
	maxShowListLimit     = 100
)

type ShowService struct {
	showRepo show.Repository
}

func NewShowService(sr show.Repository) *ShowService {
	return &ShowService{showRepo: sr}
}

func (s *ShowService) GetShow(ctx context.Context, id string) (*show.Show, error) {
	return s.showRepo.GetByID(ctx, id)
}

func (s *ShowService) ListShows(ctx context.Context, limit, offset int) ([]*show.Show, error) {
	if limit <= 0 {
		limit = defaultShowListLimit
	}
	if limit > maxShowListLimit {
		limit = maxShowListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.showRepo.List(ctx, limit, offset)
}
