// cmd/jetcart/main.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"jetcart/internal/pkg/bootstrap"
	"jetcart/internal/pkg/logger"
	"jetcart/internal/pkg/mq"
	"jetcart/internal/pkg/redis"
	"jetcart/internal/zookeeper"

	cartapp "jetcart/internal/service/cart/application"
	cartinfra "jetcart/internal/service/cart/infrastructure"
	cartadapter "jetcart/internal/service/cart/infrastructure/adapter"
	cartifaces "jetcart/internal/service/cart/interfaces"
	catalogapp "jetcart/internal/service/catalog/application"
	cataloginfra "jetcart/internal/service/catalog/infrastructure"
	catalogifaces "jetcart/internal/service/catalog/interfaces"
	inventoryapp "jetcart/internal/service/inventory/application"
	inventorydomain "jetcart/internal/service/inventory/domain"
	inventoryinfra "jetcart/internal/service/inventory/infrastructure"
	inventoryadapter "jetcart/internal/service/inventory/infrastructure/adapter"
	inventoryifaces "jetcart/internal/service/inventory/interfaces"
	notificationapp "jetcart/internal/service/notification/application"
	notificationinfra "jetcart/internal/service/notification/infrastructure"
	notificationifaces "jetcart/internal/service/notification/interfaces"
	orderapp "jetcart/internal/service/order/application"
	orderinfra "jetcart/internal/service/order/infrastructure"
	orderadapter "jetcart/internal/service/order/infrastructure/adapter"
	orderifaces "jetcart/internal/service/order/interfaces"
	taxapp "jetcart/internal/service/tax/application"
	taxinfra "jetcart/internal/service/tax/infrastructure"
	taxrule "jetcart/internal/service/tax/infrastructure/rule"
	taxifaces "jetcart/internal/service/tax/interfaces"
)

const serviceName = "jetcart"

// main 是应用的组装根 (Composition Root)：
// 创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()
	log := logger.Logger()

	ctx := context.Background()

	// --- 持久化 ---
	db, err := gorm.Open(mysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mysql")
	}
	if err := db.AutoMigrate(
		&inventoryinfra.StockModel{},
		&inventoryinfra.ReservationModel{},
		&cataloginfra.ProductModel{},
		&cataloginfra.WarehouseModel{},
		&taxinfra.TaxModel{},
		&taxinfra.TaxMappingModel{},
		&cartinfra.CartModel{},
		&orderinfra.OrderModel{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto migrate failed")
	}

	// --- 库存台账选型: mysql | redis | memory ---
	var (
		ledger      inventorydomain.StockLedger
		store       inventorydomain.ReservationStore
		redisClient *redis.Client
	)
	switch cfg.Inventory.Backend {
	case "redis":
		redisClient, err = redis.NewClient(ctx, cfg.Infra.Redis.Addr)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		ledger, err = inventoryinfra.NewRedisStockLedger(redisClient)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init redis stock ledger")
		}
		store = inventoryinfra.NewGormReservationStore(db)
	case "memory":
		ledger = inventoryinfra.NewMemoryLedger()
		store = inventoryinfra.NewMemoryStore()
	default:
		ledger = inventoryinfra.NewGormStockLedger(db)
		store = inventoryinfra.NewGormReservationStore(db)
	}

	// --- 可选的 ZooKeeper 分布式 SKU 锁 ---
	var (
		locker inventorydomain.SKULocker
		zkConn *zookeeper.Conn
	)
	if cfg.Inventory.UseZkLock && len(cfg.Infra.Zookeeper.Addrs) > 0 {
		zkConn, err = zookeeper.Connect(cfg.Infra.Zookeeper.Addrs, 5*time.Second)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect zookeeper")
		}
		locker = inventoryadapter.NewZkSKULockerAdapter(zkConn)
	}

	// --- Kafka 事件通道 ---
	var events inventorydomain.EventPublisher
	stockWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.StockEventTopic)
	events = inventoryadapter.NewStockEventKafkaAdapter(stockWriter)

	// --- 库存子系统 ---
	manager := inventoryapp.NewReservationManager(
		ledger, store, inventorydomain.SystemClock{},
		time.Duration(cfg.Inventory.BlockWindow),
		otel.Tracer("inventory-service"),
		events, locker,
	)
	stockService := inventoryapp.NewStockService(ledger, otel.Tracer("inventory-service"))
	sweeper := inventoryapp.NewSweeper(manager, time.Duration(cfg.Inventory.SweepInterval), cfg.Inventory.SweepBatchSize)
	sweeper.Start(ctx)

	// --- 商品目录 / 税率 ---
	catalogService := catalogapp.NewCatalogService(
		cataloginfra.NewGormProductRepository(db),
		cataloginfra.NewGormWarehouseRepository(db),
		otel.Tracer("catalog-service"),
	)
	ruleEngine, err := taxrule.NewCELRuleEngineAdapter()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init rule engine")
	}
	taxService := taxapp.NewTaxService(
		taxinfra.NewGormTaxRepository(db),
		taxinfra.NewGormTaxMappingRepository(db),
		ruleEngine,
		otel.Tracer("tax-service"),
	)

	// --- 订单 / 购物车 ---
	orderService := orderapp.NewOrderService(
		orderinfra.NewGormOrderRepository(db),
		orderadapter.NewInventoryAdapter(manager),
	)
	cartService := cartapp.NewCartService(
		cartinfra.NewGormCartRepository(db),
		cartadapter.NewCatalogAdapter(stockService, catalogService),
		cartadapter.NewPricingAdapter(stockService, catalogService, taxService),
		cartadapter.NewInventoryAdapter(manager),
		cartadapter.NewOrderAdapter(orderService),
	)

	// --- 库存事件推送 ---
	hub := notificationapp.NewHub()
	go hub.Run()
	stockReader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.StockEventTopic, serviceName+"-notification")
	consumer := notificationinfra.NewStockEventConsumerAdapter(stockReader, hub)
	consumer.Start(ctx)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())

			inventoryifaces.NewInventoryHandler(stockService, manager).RegisterRoutes(appCtx.Mux)
			catalogifaces.NewCatalogHandler(catalogService).RegisterRoutes(appCtx.Mux)
			taxifaces.NewTaxHandler(taxService).RegisterRoutes(appCtx.Mux)
			cartifaces.NewCartHandler(cartService).RegisterRoutes(appCtx.Mux)
			orderifaces.NewOrderHandler(orderService, cartService).RegisterRoutes(appCtx.Mux)
			notificationifaces.NewWsHandler(hub).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			sweeper.Stop()
			consumer.Stop()
			hub.Close()
			if err := stockWriter.Close(); err != nil {
				log.Error().Err(err).Msg("close kafka writer")
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					log.Error().Err(err).Msg("close redis client")
				}
			}
			if zkConn != nil {
				zkConn.Close()
			}
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		},
	})
}
