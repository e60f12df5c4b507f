// internal/service/tax/domain/repository.go
package domain

import "context"

// TaxRepository 定义了税率数据的持久化接口。
type TaxRepository interface {
	Save(ctx context.Context, tax *Tax) error
	FindByType(ctx context.Context, taxType string) (*Tax, error)
	FindAll(ctx context.Context) ([]*Tax, error)
	DeleteAll(ctx context.Context) error
}

// TaxMappingRepository 定义了类目税种映射的持久化接口。
type TaxMappingRepository interface {
	Save(ctx context.Context, mapping *TaxMapping) error
	FindByCategory(ctx context.Context, category string) (*TaxMapping, error)
	FindAll(ctx context.Context) ([]*TaxMapping, error)
}
