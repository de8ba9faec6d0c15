//go:build integration
// +build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-show-ticket-booking/internal/config"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
)

func setupTestDB(t *testing.T) (*sqlx.DB, string) {
	t.Helper()
	cfg := config.Load()

	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}
	if err := RunMigrations(db.DB, "../../../migrations"); err != nil {
		t.Fatalf("マイグレーション失敗: %v", err)
	}

	hallID := uuid.New().String()
	showID := uuid.New().String()
	db.MustExec(`INSERT INTO halls (id, name) VALUES ($1, 'テストホール')`, hallID)
	for _, s := range []string{"A1", "A2", "A3", "B1"} {
		db.MustExec(`INSERT INTO seats (hall_id, seat_id) VALUES ($1, $2)`, hallID, s)
	}
	db.MustExec(`INSERT INTO shows (id, name, hall_id, starts_at, base_price) VALUES ($1, 'テスト公演', $2, $3, 1000)`,
		showID, hallID, time.Now().Add(24*time.Hour))
	db.MustExec(`INSERT INTO show_seats (show_id, seat_id, hall_id) SELECT $1, seat_id, hall_id FROM seats WHERE hall_id = $2`, showID, hallID)

	t.Cleanup(func() {
		db.Exec(`DELETE FROM tickets WHERE show_id = $1`, showID)
		db.Exec(`DELETE FROM show_seats WHERE show_id = $1`, showID)
		db.Exec(`DELETE FROM shows WHERE id = $1`, showID)
		db.Exec(`DELETE FROM seats WHERE hall_id = $1`, hallID)
		db.Exec(`DELETE FROM halls WHERE id = $1`, hallID)
		db.Close()
	})
	return db, showID
}

func TestSeatInventory_Integration(t *testing.T) {
	db, showID := setupTestDB(t)
	ctx := context.Background()
	inv := NewSeatInventory(db)

	t.Run("部分的な押さえは起きない", func(t *testing.T) {
		_, err := inv.CheckAndReserve(ctx, showID, []string{"A2"}, "hold-x")
		require.NoError(t, err)

		_, err = inv.CheckAndReserve(ctx, showID, []string{"A1", "A2"}, "hold-y")
		assert.ErrorIs(t, err, seat.ErrSeatNotAvailable)

		count, err := inv.CountAvailable(ctx, showID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		require.NoError(t, inv.Release(ctx, showID, []string{"A2"}, "hold-x"))
		require.NoError(t, inv.Release(ctx, showID, []string{"A2"}, "hold-x"))
	})

	t.Run("同じ座席の並行押さえは1件のみ成功", func(t *testing.T) {
		const n = 10
		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, err := inv.CheckAndReserve(ctx, showID, []string{"B1"}, fmt.Sprintf("hold-%d", i)); err == nil {
					atomic.AddInt32(&wins, 1)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins)
	})

	t.Run("期限切れの押さえを解放", func(t *testing.T) {
		released, err := inv.ReleaseExpired(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, released[showID], 1)
	})
}

func TestTicketLedger_Integration(t *testing.T) {
	db, showID := setupTestDB(t)
	ctx := context.Background()
	inv := NewSeatInventory(db)
	ledger := NewTicketLedger(db)
	customers := NewCustomerRepository(db)
	txm := NewTxManager(db)

	c := customer.NewCustomer("it-user-"+uuid.New().String(), customer.TierRegular)
	require.NoError(t, customers.Create(ctx, c))
	assert.ErrorIs(t, customers.Create(ctx, customer.NewCustomer(c.UserID, "")), customer.ErrCustomerAlreadyExists)

	_, err := inv.CheckAndReserve(ctx, showID, []string{"A1", "A3"}, "hold-1")
	require.NoError(t, err)
	tickets := ticket.NewTickets(c.ID, showID, []string{"A1", "A3"}, 1000)

	err = transaction.Run(ctx, txm, func(tx transaction.Tx) error {
		if err := ledger.Commit(ctx, tx, tickets); err != nil {
			return err
		}
		return inv.MarkBooked(ctx, tx, showID, []string{"A1", "A3"}, "hold-1")
	})
	require.NoError(t, err)

	entries, err := ledger.History(ctx, c.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "テスト公演", entries[0].ShowName)
	assert.Equal(t, "テストホール", entries[0].VenueName)

	count, err := ledger.CountByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// 同じ座席の2枚目は一意制約で弾かれる
	dup := ticket.NewTickets(c.ID, showID, []string{"A1"}, 1000)
	err = transaction.Run(ctx, txm, func(tx transaction.Tx) error {
		return ledger.Commit(ctx, tx, dup)
	})
	assert.ErrorIs(t, err, ticket.ErrSeatAlreadySold)

	// UUIDでないIDは存在しないものとして扱う
	_, err = ledger.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ticket.ErrTicketNotFound)

	db.Exec(`DELETE FROM tickets WHERE customer_id = $1`, c.ID)
	db.Exec(`DELETE FROM customers WHERE id = $1`, c.ID)
}

func TestShowRepository_Integration(t *testing.T) {
	db, showID := setupTestDB(t)
	ctx := context.Background()
	repo := NewShowRepository(db)

	sh, err := repo.GetByID(ctx, showID)
	require.NoError(t, err)
	assert.Equal(t, "テスト公演", sh.Name)
	assert.Equal(t, "テストホール", sh.HallName)

	_, err = repo.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, show.ErrShowNotFound)

	_, err = repo.GetByID(ctx, "S1")
	assert.ErrorIs(t, err, show.ErrShowNotFound)
}
