// internal/service/inventory/infrastructure/adapter/zk_locker_adapter.go
package adapter

import (
	"context"

	"jetcart/internal/pkg/logger"
	"jetcart/internal/zookeeper"
)

// ZkSKULockerAdapter 实现了 domain.SKULocker，
// 用 ZooKeeper 临时顺序节点对单个 SKU 做跨进程互斥。
// 仅在多实例部署且台账实现本身不提供原子扣减时启用。
type ZkSKULockerAdapter struct {
	conn *zookeeper.Conn
}

func NewZkSKULockerAdapter(conn *zookeeper.Conn) *ZkSKULockerAdapter {
	return &ZkSKULockerAdapter{conn: conn}
}

func (a *ZkSKULockerAdapter) WithLock(ctx context.Context, sku string, fn func() error) error {
	lock, err := zookeeper.NewSKULock(a.conn, sku)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("sku", sku).Msg("failed to release sku lock")
		}
	}()
	return fn()
}
