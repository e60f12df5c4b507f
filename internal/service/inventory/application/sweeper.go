// internal/service/inventory/application/sweeper.go
package application

import (
	"context"
	"sync"
	"time"

	"jetcart/internal/pkg/logger"
)

// Sweeper 周期性地释放被遗弃的过期预占。
// 过期本身是惰性的时间比较，清扫器只是兜底回收，
// 与 commit 路径的竞争由条件流转裁决。
type Sweeper struct {
	manager   *ReservationManager
	interval  time.Duration
	batchSize int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewSweeper(manager *ReservationManager, interval time.Duration, batchSize int) *Sweeper {
	return &Sweeper{manager: manager, interval: interval, batchSize: batchSize}
}

// Start 启动后台清扫循环。
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		logger.Logger().Info().
			Dur("interval", s.interval).Int("batch_size", s.batchSize).
			Msg("reservation sweeper started")
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				released, err := s.manager.SweepExpired(ctx, s.batchSize)
				if err != nil {
					logger.Ctx(ctx).Error().Err(err).Msg("sweep pass failed")
					continue
				}
				if released > 0 {
					logger.Ctx(ctx).Info().Int("released", released).Msg("sweep pass released expired reservations")
				}
			case <-ctx.Done():
				logger.Logger().Info().Msg("reservation sweeper shutting down")
				return
			}
		}
	}()
}

// Stop 停止清扫并等待当前一轮结束。
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
