// internal/service/notification/infrastructure/kafka_consumer.go
package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"jetcart/internal/pkg/logger"
	"jetcart/internal/pkg/mq"
	"jetcart/internal/service/notification/application"
)

// StockEventConsumerAdapter 监听库存事件主题并驱动 Hub 广播。
type StockEventConsumerAdapter struct {
	reader  *kafka.Reader
	hub     *application.Hub
	wg      sync.WaitGroup
	stopped bool
}

func NewStockEventConsumerAdapter(reader *kafka.Reader, hub *application.Hub) *StockEventConsumerAdapter {
	return &StockEventConsumerAdapter{reader: reader, hub: hub}
}

// Start 开始消费。长期运行，直到 Stop 或上下文取消。
func (a *StockEventConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Logger().Info().Str("topic", a.reader.Config().Topic).Msg("stock event consumer started")
		for {
			if a.stopped {
				return
			}
			// 用 FetchMessage 而不是 ReadMessage，便于控制退出与提交时机
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Logger().Info().Msg("stock event consumer shutting down")
					return
				}
				logger.Logger().Error().Err(err).Msg("fetch stock event failed, retrying")
				time.Sleep(time.Second)
				continue
			}

			a.processMessage(ctx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Logger().Error().Err(err).Msg("commit offset failed")
			}
		}
	}()
}

// Stop 优雅停止消费者。
func (a *StockEventConsumerAdapter) Stop() {
	a.stopped = true
	a.reader.Close()
	a.wg.Wait()
}

func (a *StockEventConsumerAdapter) processMessage(parentCtx context.Context, msg kafka.Message) {
	var notification application.StockNotification
	if err := json.Unmarshal(msg.Value, &notification); err != nil {
		logger.Logger().Error().Err(err).Msg("unmarshal stock event failed, skipping")
		return
	}

	headerCarrier := mq.KafkaHeaderCarrier(msg.Headers)
	ctx := otel.GetTextMapPropagator().Extract(parentCtx, &headerCarrier)

	payload, err := json.Marshal(&notification)
	if err != nil {
		return
	}
	a.hub.Broadcast(notification.SKU, payload)
	logger.Ctx(ctx).Debug().
		Str("sku", notification.SKU).
		Str("type", notification.Type).
		Msg("stock event broadcast")
}
