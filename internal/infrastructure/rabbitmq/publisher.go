// Package rabbitmq は照合が必要な予約をキューへ送る
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-ticket-booking/internal/pkg/logger"
)

// channel は amqp.Channel のうち送信に使う操作
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// opener はブローカーへ接続してチャネルを開く。戻り値の関数で接続を閉じる
type opener func() (channel, func() error, error)

// ReconciliationPublisher は照合イベントを永続キューへ送る
// 頻度が低いため送信ごとに接続する
type ReconciliationPublisher struct {
	queue string
	open  opener
}

func NewReconciliationPublisher(url, queue string) *ReconciliationPublisher {
	return &ReconciliationPublisher{
		queue: queue,
		open: func() (channel, func() error, error) {
			conn, err := amqp.Dial(url)
			if err != nil {
				return nil, nil, err
			}
			ch, err := conn.Channel()
			if err != nil {
				_ = conn.Close()
				return nil, nil, err
			}
			return ch, conn.Close, nil
		},
	}
}

// Report は照合イベントを送信する
func (p *ReconciliationPublisher) Report(ctx context.Context, ev booking.ReconciliationEvent) error {
	ch, closeConn, err := p.open()
	if err != nil {
		return fmt.Errorf("RabbitMQ接続に失敗: %w", err)
	}
	defer func() {
		_ = ch.Close()
		_ = closeConn()
	}()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("キュー宣言に失敗: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("照合イベントの変換に失敗: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.AttemptID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("照合イベントの送信に失敗: %w", err)
	}

	logger.Info("照合イベントを送信しました",
		logger.AttemptID(ev.AttemptID),
		logger.ChargeID(ev.ChargeID),
		zap.String("queue", p.queue),
	)
	return nil
}
