// internal/service/inventory/infrastructure/adapter/stock_event_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"jetcart/internal/pkg/logger"
	"jetcart/internal/pkg/mq"
	"jetcart/internal/service/inventory/domain"
)

// StockEventKafkaAdapter 实现了 domain.EventPublisher，
// 把预占生命周期事件发往 Kafka。以 SKU 为分区键，
// 同一 SKU 的事件保持顺序。
type StockEventKafkaAdapter struct {
	writer *kafka.Writer
}

func NewStockEventKafkaAdapter(writer *kafka.Writer) *StockEventKafkaAdapter {
	return &StockEventKafkaAdapter{writer: writer}
}

func (a *StockEventKafkaAdapter) Publish(ctx context.Context, event *domain.StockEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to marshal stock event")
		return err
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(event.SKU), eventBytes)
}
