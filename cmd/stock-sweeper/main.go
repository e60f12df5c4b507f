// cmd/stock-sweeper/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"jetcart/internal/pkg/bootstrap"
	"jetcart/internal/pkg/logger"
	"jetcart/internal/pkg/mq"
	"jetcart/internal/tracing"

	inventoryapp "jetcart/internal/service/inventory/application"
	inventorydomain "jetcart/internal/service/inventory/domain"
	inventoryinfra "jetcart/internal/service/inventory/infrastructure"
	inventoryadapter "jetcart/internal/service/inventory/infrastructure/adapter"
)

const serviceName = "stock-sweeper"

// 独立的过期预占清扫进程。惰性回收是权威路径，这里只是
// 为长期无访问的预占兜底，可按需水平扩展或单独部署。
func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()
	log := logger.Logger()

	tp, err := tracing.InitTracerProvider(serviceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	db, err := gorm.Open(mysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mysql")
	}

	stockWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.StockEventTopic)
	manager := inventoryapp.NewReservationManager(
		inventoryinfra.NewGormStockLedger(db),
		inventoryinfra.NewGormReservationStore(db),
		inventorydomain.SystemClock{},
		time.Duration(cfg.Inventory.BlockWindow),
		otel.Tracer(serviceName),
		inventoryadapter.NewStockEventKafkaAdapter(stockWriter),
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper := inventoryapp.NewSweeper(manager, time.Duration(cfg.Inventory.SweepInterval), cfg.Inventory.SweepBatchSize)
	sweeper.Start(ctx)
	log.Info().
		Dur("interval", time.Duration(cfg.Inventory.SweepInterval)).
		Int("batch_size", cfg.Inventory.SweepBatchSize).
		Msg("stock sweeper started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down stock sweeper")

	cancel()
	sweeper.Stop()
	if err := stockWriter.Close(); err != nil {
		log.Error().Err(err).Msg("close kafka writer")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("shutdown tracer provider")
	}
}
