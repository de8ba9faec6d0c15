package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-show-ticket-booking/internal/config"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/customer"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-show-ticket-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-show-ticket-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
)

// デモ公演（000002_seed_demo_show と同じ内容）
const (
	demoShowID   = "6f1c2d3e-0000-4000-8000-000000000101"
	demoHallID   = "6f1c2d3e-0000-4000-8000-000000000001"
	demoHallName = "メインホール"
)

// store は選択したドライバーのリポジトリ一式
type store struct {
	shows     show.Repository
	customers customer.Repository
	inventory seat.Inventory
	ledger    ticket.Ledger
	txManager transaction.Manager
	ping      handler.HealthCheck
	close     func() error
}

func openStore(cfg *config.Config) (*store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return openMemoryStore()
	case config.StoreDriverPostgres:
		return openPostgresStore(cfg)
	default:
		return nil, fmt.Errorf("未対応のストア: %q", cfg.Store.Driver)
	}
}

func openPostgresStore(cfg *config.Config) (*store, error) {
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(db.DB, cfg.Store.MigrationsPath); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("データベースに接続しました", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	return &store{
		shows:     postgres.NewShowRepository(db),
		customers: postgres.NewCustomerRepository(db),
		inventory: postgres.NewSeatInventory(db),
		ledger:    postgres.NewTicketLedger(db),
		txManager: postgres.NewTxManager(db),
		ping:      func(ctx context.Context) error { return postgres.Ping(ctx, db) },
		close:     db.Close,
	}, nil
}

func openMemoryStore() (*store, error) {
	s := memory.NewStore()
	if err := seedDemoShow(s); err != nil {
		return nil, fmt.Errorf("デモ公演の登録に失敗: %w", err)
	}
	logger.Info("インメモリストアを使用します（再起動で状態は消えます）")

	return &store{
		shows:     s.Shows(),
		customers: s.Customers(),
		inventory: s.Inventory(),
		ledger:    s.Ledger(),
		txManager: s,
		close:     func() error { return nil },
	}, nil
}

func seedDemoShow(s *memory.Store) error {
	y, mo, d := time.Now().Date()
	startsAt := time.Date(y, mo, d, 19, 0, 0, 0, time.Local).AddDate(0, 0, 30)

	sh := show.NewShow("デモ公演", demoHallID, demoHallName, startsAt, 1000)
	sh.ID = demoShowID

	seatIDs := make([]string, 0, 30)
	for _, row := range []string{"A", "B", "C"} {
		for n := 1; n <= 10; n++ {
			seatIDs = append(seatIDs, fmt.Sprintf("%s%d", row, n))
		}
	}
	return s.AddShow(sh, seatIDs)
}
