// internal/service/inventory/application/stock_service.go
package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jetcart/internal/service/inventory/domain"
)

// StockService 承载库存记录的管理面操作（建档、查询、补货）。
// 这些操作不走预占协议。
type StockService struct {
	ledger domain.StockLedger
	tracer trace.Tracer
}

func NewStockService(ledger domain.StockLedger, tracer trace.Tracer) *StockService {
	return &StockService{ledger: ledger, tracer: tracer}
}

// CreateRecordRequest 是建档请求。BuyerLimit 为 0 时取默认限购数。
type CreateRecordRequest struct {
	SKU         string `json:"sku"`
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
	BuyerLimit  int    `json:"buyer_limit"`
}

func (s *StockService) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*domain.StockRecord, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CreateRecord")
	defer span.End()
	span.SetAttributes(attribute.String("inventory.sku", req.SKU))

	if req.SKU == "" {
		return nil, errors.Wrap(domain.ErrInvalidSKU, "sku is required")
	}
	if req.Quantity < 0 {
		return nil, errors.Wrap(domain.ErrInvalidQuantity, "quantity cannot be negative")
	}
	limit := req.BuyerLimit
	if limit == 0 {
		limit = domain.DefaultBuyerLimit
	}
	if limit < 1 {
		return nil, errors.Wrap(domain.ErrInvalidQuantity, "buyer_limit must be >= 1")
	}

	rec := &domain.StockRecord{
		SKU:         req.SKU,
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		BuyerLimit:  limit,
	}
	if err := s.ledger.Create(ctx, rec); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rec, nil
}

func (s *StockService) Fetch(ctx context.Context, sku string) (*domain.StockRecord, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.FetchRecord")
	defer span.End()
	return s.ledger.Get(ctx, sku)
}

// Restock 管理员直接覆盖可售数量。
func (s *StockService) Restock(ctx context.Context, sku string, quantity int) (*domain.StockRecord, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Restock")
	defer span.End()
	span.SetAttributes(attribute.String("inventory.sku", sku), attribute.Int("inventory.quantity", quantity))

	if quantity < 0 {
		return nil, errors.Wrap(domain.ErrInvalidQuantity, "quantity cannot be negative")
	}
	if err := s.ledger.SetQuantity(ctx, sku, quantity); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.ledger.Get(ctx, sku)
}
