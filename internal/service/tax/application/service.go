// internal/service/tax/application/service.go
package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jetcart/internal/pkg/logger"
	"jetcart/internal/service/tax/domain"
)

// TaxService 承载税率与类目映射的用例，
// 并为购物车计价提供"某条目适用哪些税"的查询。
type TaxService struct {
	taxes    domain.TaxRepository
	mappings domain.TaxMappingRepository
	rules    domain.RuleEngine
	tracer   trace.Tracer
}

func NewTaxService(taxes domain.TaxRepository, mappings domain.TaxMappingRepository, rules domain.RuleEngine, tracer trace.Tracer) *TaxService {
	return &TaxService{taxes: taxes, mappings: mappings, rules: rules, tracer: tracer}
}

func (s *TaxService) CreateTax(ctx context.Context, taxType string, value float64) (*domain.Tax, error) {
	ctx, span := s.tracer.Start(ctx, "tax.CreateTax")
	defer span.End()
	span.SetAttributes(attribute.String("tax.type", taxType))

	if !domain.ValidTaxType(taxType) {
		return nil, errors.Wrapf(domain.ErrUnknownTaxType, "type %q", taxType)
	}
	tax := &domain.Tax{Type: taxType, Value: value}
	if err := s.taxes.Save(ctx, tax); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return tax, nil
}

func (s *TaxService) FetchTax(ctx context.Context, taxType string) (*domain.Tax, error) {
	ctx, span := s.tracer.Start(ctx, "tax.FetchTax")
	defer span.End()
	return s.taxes.FindByType(ctx, taxType)
}

func (s *TaxService) FetchAllTaxes(ctx context.Context) ([]*domain.Tax, error) {
	ctx, span := s.tracer.Start(ctx, "tax.FetchAllTaxes")
	defer span.End()
	return s.taxes.FindAll(ctx)
}

func (s *TaxService) DeleteAllTaxes(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "tax.DeleteAllTaxes")
	defer span.End()
	return s.taxes.DeleteAll(ctx)
}

func (s *TaxService) CreateMapping(ctx context.Context, mapping *domain.TaxMapping) (*domain.TaxMapping, error) {
	ctx, span := s.tracer.Start(ctx, "tax.CreateMapping")
	defer span.End()
	span.SetAttributes(attribute.String("tax.category", mapping.Category))

	for _, taxType := range mapping.TaxTypes {
		if !domain.ValidTaxType(taxType) {
			return nil, errors.Wrapf(domain.ErrUnknownTaxType, "type %q", taxType)
		}
	}
	// 有规则就先试编译一遍，坏规则在写入时报错而不是计价时
	if mapping.Rule != "" {
		if _, err := s.rules.Evaluate(mapping.Rule, domain.ItemFact{}); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}
	if err := s.mappings.Save(ctx, mapping); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return mapping, nil
}

func (s *TaxService) FetchAllMappings(ctx context.Context) ([]*domain.TaxMapping, error) {
	ctx, span := s.tracer.Start(ctx, "tax.FetchAllMappings")
	defer span.End()
	return s.mappings.FindAll(ctx)
}

// TaxesForCategory 返回某类目对给定条目实际适用的税率。
// 类目没有映射、或适用性规则不满足时，返回空列表而不是错误。
func (s *TaxService) TaxesForCategory(ctx context.Context, category string, fact domain.ItemFact) ([]*domain.Tax, error) {
	ctx, span := s.tracer.Start(ctx, "tax.TaxesForCategory")
	defer span.End()
	span.SetAttributes(attribute.String("tax.category", category))

	mapping, err := s.mappings.FindByCategory(ctx, category)
	if err != nil {
		if errors.Is(err, domain.ErrMappingNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, err
	}

	applies, err := s.rules.Evaluate(mapping.Rule, fact)
	if err != nil {
		// 坏规则不应让整个计价失败，跳过该映射并告警
		logger.Ctx(ctx).Warn().Err(err).
			Str("category", category).
			Msg("tax applicability rule failed, skipping mapping")
		return nil, nil
	}
	if !applies {
		return nil, nil
	}

	taxes := make([]*domain.Tax, 0, len(mapping.TaxTypes))
	for _, taxType := range mapping.TaxTypes {
		tax, err := s.taxes.FindByType(ctx, taxType)
		if err != nil {
			if errors.Is(err, domain.ErrTaxNotFound) {
				continue
			}
			span.RecordError(err)
			return nil, err
		}
		taxes = append(taxes, tax)
	}
	return taxes, nil
}
