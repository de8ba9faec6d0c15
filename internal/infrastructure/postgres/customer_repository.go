package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
)

type customerRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Tier      string    `db:"tier"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type CustomerRepository struct{ db *sqlx.DB }

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository { return &CustomerRepository{db: db} }

func (r *CustomerRepository) GetByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	var row customerRow
	query := `SELECT id, user_id, tier, created_at, updated_at FROM customers WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("購入者取得に失敗: %w", err)
	}
	return &customer.Customer{
		ID: row.ID, UserID: row.UserID, Tier: customer.Tier(row.Tier),
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO customers (user_id, tier, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, c.UserID, string(c.Tier), c.CreatedAt, c.UpdatedAt).Scan(&c.ID); err != nil {
		if isUniqueViolation(err) {
			return customer.ErrCustomerAlreadyExists
		}
		return fmt.Errorf("購入者登録に失敗: %w", err)
	}
	return nil
}

var _ customer.Repository = (*CustomerRepository)(nil)
