// internal/service/inventory/infrastructure/gorm_store.go
package infrastructure

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"jetcart/internal/service/inventory/domain"
)

// GormReservationStore 是 ReservationStore 的 GORM/MySQL 实现。
// 状态流转用条件更新（WHERE state = 'BLOCKED'）保证终态不可变，
// 并发的 commit 与 sweep 恰好一方能赢。
type GormReservationStore struct {
	db *gorm.DB
}

func NewGormReservationStore(db *gorm.DB) *GormReservationStore {
	return &GormReservationStore{db: db}
}

func (s *GormReservationStore) Create(ctx context.Context, sku string, quantity int, expiry int64) (*domain.Reservation, error) {
	model := &ReservationModel{
		ID:       uuid.New().String(),
		SKU:      sku,
		Quantity: quantity,
		Expiry:   expiry,
		State:    string(domain.StateBlocked),
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create reservation")
	}
	return toDomainReservation(model), nil
}

func (s *GormReservationStore) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	var model ReservationModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownReservation
		}
		return nil, pkgerrors.Wrap(err, "failed to load reservation")
	}
	return toDomainReservation(&model), nil
}

func (s *GormReservationStore) Transition(ctx context.Context, id string, target domain.State) error {
	result := s.db.WithContext(ctx).Model(&ReservationModel{}).
		Where("id = ? AND state = ?", id, string(domain.StateBlocked)).
		Update("state", string(target))
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "failed to transition reservation")
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (s *GormReservationStore) FindExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error) {
	var models []ReservationModel
	query := s.db.WithContext(ctx).
		Where("state = ? AND expiry < ?", string(domain.StateBlocked), now.Unix())
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query expired reservations")
	}
	reservations := make([]*domain.Reservation, 0, len(models))
	for i := range models {
		reservations = append(reservations, toDomainReservation(&models[i]))
	}
	return reservations, nil
}
