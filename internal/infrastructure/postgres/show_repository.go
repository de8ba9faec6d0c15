package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
)

type showRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	HallID    string    `db:"hall_id"`
	HallName  string    `db:"hall_name"`
	StartsAt  time.Time `db:"starts_at"`
	BasePrice int       `db:"base_price"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *showRow) toEntity() *show.Show {
	return &show.Show{
		ID:        r.ID,
		Name:      r.Name,
		HallID:    r.HallID,
		HallName:  r.HallName,
		StartsAt:  r.StartsAt,
		BasePrice: r.BasePrice,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const showColumns = `s.id, s.name, s.hall_id, h.name AS hall_name, s.starts_at, s.base_price, s.created_at, s.updated_at`

// ShowRepository は公演リポジトリのPostgreSQL実装
type ShowRepository struct {
	db *sqlx.DB
}

func NewShowRepository(db *sqlx.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

func (r *ShowRepository) GetByID(ctx context.Context, id string) (*show.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows s JOIN halls h ON h.id = s.hall_id WHERE s.id = $1`
	var row showRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, show.ErrShowNotFound
		}
		return nil, fmt.Errorf("公演取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ShowRepository) List(ctx context.Context, limit, offset int) ([]*show.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows s JOIN halls h ON h.id = s.hall_id ORDER BY s.starts_at, s.id LIMIT $1 OFFSET $2`
	var rows []showRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("公演一覧取得に失敗: %w", err)
	}
	shows := make([]*show.Show, len(rows))
	for i := range rows {
		shows[i] = rows[i].toEntity()
	}
	return shows, nil
}

var _ show.Repository = (*ShowRepository)(nil)
