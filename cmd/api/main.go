package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-show-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-show-ticket-booking/internal/api/router"
	"github.com/sanosuguru/go-show-ticket-booking/internal/application"
	"github.com/sanosuguru/go-show-ticket-booking/internal/config"
	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/pricing"
	paymentinfra "github.com/sanosuguru/go-show-ticket-booking/internal/infrastructure/payment"
	"github.com/sanosuguru/go-show-ticket-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-show-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-show-ticket-booking/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.Env)
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()

	st, err := openStore(cfg)
	if err != nil {
		logger.Fatal("ストアの初期化に失敗しました", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	health := handler.NewHealthHandler()
	if st.ping != nil {
		health.WithCheck(cfg.Store.Driver, st.ping)
	}

	resolver := application.NewCustomerResolver(st.customers)
	gateway := paymentinfra.NewFacade(pricing.NewEngine(nil), newPaymentProcessor(&cfg.Payment))

	bookingService := application.NewBookingService(resolver, st.shows, st.inventory, st.ledger, gateway, st.txManager).
		WithMetrics(m).
		WithPaymentTimeout(cfg.Payment.Timeout)
	seatService := application.NewSeatService(st.inventory, st.shows, nil)

	// Redis はロックとキャッシュのみ。繋がらなければ無しで動く
	if rc := connectRedis(&cfg.Redis); rc != nil {
		defer rc.Close()
		cache := redisinfra.NewSeatCache(rc)
		locker := redisinfra.NewSeatLocker(redisinfra.NewLockManager(rc, m), cfg.Booking.SeatLockTTL)
		bookingService.WithSeatLocker(locker).WithSeatCache(cache)
		seatService = application.NewSeatService(st.inventory, st.shows, cache)
		health.WithCheck("redis", func(ctx context.Context) error { return redisinfra.Ping(ctx, rc) })
	}

	if cfg.RabbitMQ.URL != "" {
		bookingService.WithReporter(rabbitmq.NewReconciliationPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue))
		logger.Info("照合イベントをキューに送信します", zap.String("queue", cfg.RabbitMQ.Queue))
	}

	e := router.New(router.Handlers{
		Booking: handler.NewBookingHandler(bookingService),
		Ticket:  handler.NewTicketHandler(application.NewHistoryService(resolver, st.ledger)),
		Show:    handler.NewShowHandler(application.NewShowService(st.shows)),
		Seat:    handler.NewSeatHandler(seatService),
		Health:  health,
	}, router.Options{
		JWTSecret:   cfg.Auth.JWTSecret,
		Metrics:     m,
		MetricsAuth: middleware.LoadMetricsConfig(),
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// 放置された押さえの回収
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	sweeper := worker.NewHoldSweeper(bookingService, cfg.Booking.SweepInterval, cfg.Booking.HoldTTL)
	go sweeper.Start(workerCtx)

	go func() {
		logger.Info("サーバーを起動します", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	sweeper.Stop()
	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

func newPaymentProcessor(cfg *config.PaymentConfig) paymentinfra.Processor {
	if cfg.GatewayURL == "" {
		logger.Warn("決済ゲートウェイ未設定のため疑似決済を使用します", zap.Int("limit", cfg.SimulatedLimit))
		return paymentinfra.NewSimulatedProcessor(cfg.SimulatedLimit)
	}
	return paymentinfra.NewHTTPProcessor(cfg.GatewayURL, cfg.APIKey, cfg.Timeout)
}

func connectRedis(cfg *config.RedisConfig) *goredis.Client {
	rc := redisinfra.NewClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisinfra.Ping(ctx, rc); err != nil {
		logger.Warn("Redisに接続できないため分散ロックとキャッシュを無効にします", zap.String("addr", cfg.Addr()), zap.Error(err))
		_ = rc.Close()
		return nil
	}
	logger.Info("Redisに接続しました", zap.String("addr", cfg.Addr()))
	return rc
}
