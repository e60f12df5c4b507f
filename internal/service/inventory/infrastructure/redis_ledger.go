// internal/service/inventory/infrastructure/redis_ledger.go
package infrastructure

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"jetcart/internal/pkg/redis"
	"jetcart/internal/service/inventory/domain"
)

const decrementScriptName = "stock_decrement"

// RedisStockLedger 是 StockLedger 的 Redis 实现，适合热点 SKU 的
// 高并发扣减场景。检查-扣减由 Lua 脚本在服务端一次执行，
// 对同一 SKU 的并发调用天然串行。
type RedisStockLedger struct {
	redisClient *redis.Client
}

// NewRedisStockLedger 创建台账实例，并在创建时加载扣减脚本。
func NewRedisStockLedger(redisClient *redis.Client) (*RedisStockLedger, error) {
	if err := redisClient.LoadScriptFromContent(decrementScriptName, decrementScript); err != nil {
		return nil, fmt.Errorf("failed to load stock decrement script: %w", err)
	}
	return &RedisStockLedger{redisClient: redisClient}, nil
}

func stockKey(sku string) string {
	return fmt.Sprintf("inventory:stock:{%s}", sku)
}

func (l *RedisStockLedger) Create(ctx context.Context, rec *domain.StockRecord) error {
	rdb := l.redisClient.GetClient()
	key := stockKey(rec.SKU)

	exists, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "failed to check stock key")
	}
	if exists == 1 {
		return domain.ErrSKUExists
	}

	err = rdb.HSet(ctx, key,
		"product_id", rec.ProductID,
		"warehouse_id", rec.WarehouseID,
		"quantity", rec.Quantity,
		"buyer_limit", rec.BuyerLimit,
	).Err()
	if err != nil {
		return errors.Wrap(err, "failed to create stock hash")
	}
	return nil
}

func (l *RedisStockLedger) Get(ctx context.Context, sku string) (*domain.StockRecord, error) {
	fields, err := l.redisClient.GetClient().HGetAll(ctx, stockKey(sku)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load stock hash")
	}
	if len(fields) == 0 {
		return nil, domain.ErrInvalidSKU
	}
	quantity, _ := strconv.Atoi(fields["quantity"])
	buyerLimit, _ := strconv.Atoi(fields["buyer_limit"])
	return &domain.StockRecord{
		SKU:         sku,
		ProductID:   fields["product_id"],
		WarehouseID: fields["warehouse_id"],
		Quantity:    quantity,
		BuyerLimit:  buyerLimit,
	}, nil
}

// TryDecrement 执行服务端 Lua 脚本完成原子的检查-扣减。
func (l *RedisStockLedger) TryDecrement(ctx context.Context, sku string, quantity int) error {
	result, err := l.redisClient.RunScript(ctx, decrementScriptName, []string{stockKey(sku)}, quantity)
	if err != nil {
		return errors.Wrap(err, "failed to run stock decrement script")
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("unexpected result type from Lua script: %T", result)
	}
	switch code {
	case 1:
		return nil
	case 0:
		return domain.ErrInsufficientStock
	case -1:
		return domain.ErrInvalidSKU
	default:
		return fmt.Errorf("unknown result code from stock decrement script: %d", code)
	}
}

func (l *RedisStockLedger) Increment(ctx context.Context, sku string, quantity int) error {
	rdb := l.redisClient.GetClient()
	key := stockKey(sku)
	exists, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "failed to check stock key")
	}
	if exists == 0 {
		return domain.ErrInvalidSKU
	}
	return rdb.HIncrBy(ctx, key, "quantity", int64(quantity)).Err()
}

func (l *RedisStockLedger) SetQuantity(ctx context.Context, sku string, quantity int) error {
	rdb := l.redisClient.GetClient()
	key := stockKey(sku)
	exists, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "failed to check stock key")
	}
	if exists == 0 {
		return domain.ErrInvalidSKU
	}
	return rdb.HSet(ctx, key, "quantity", quantity).Err()
}

var decrementScript = `
-- KEYS[1]: 库存 hash 的 Key, 例如: inventory:stock:{sku-123}
-- ARGV[1]: 要扣减的数量

-- 1. 读取当前库存
local stock = redis.call('hget', KEYS[1], 'quantity')
if not stock then
    return -1 -- SKU 不存在
end

-- 2. 检查库存是否充足
if tonumber(stock) >= tonumber(ARGV[1]) then
    -- 3. 库存充足，扣减
    redis.call('hincrby', KEYS[1], 'quantity', -tonumber(ARGV[1]))
    return 1 -- 扣减成功
end

return 0 -- 库存不足
`
