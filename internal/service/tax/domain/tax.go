// internal/service/tax/domain/tax.go
package domain

import "errors"

var (
	ErrTaxNotFound     = errors.New("tax not found")
	ErrUnknownTaxType  = errors.New("unknown tax type")
	ErrMappingNotFound = errors.New("tax mapping not found")
)

// 支持的税种。
const (
	TaxTypeCGST = "C_GST"
	TaxTypeSGST = "S_GST"
	TaxTypeVAT  = "VAT"
)

// ValidTaxType 校验税种是否受支持。
func ValidTaxType(taxType string) bool {
	switch taxType {
	case TaxTypeCGST, TaxTypeSGST, TaxTypeVAT:
		return true
	}
	return false
}

// Tax 是一条税率记录，按税种唯一。Value 为百分比。
type Tax struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// TaxMapping 把一个商品类目映射到一组税种。
// Rule 是可选的 CEL 表达式，针对具体购物车条目判断该映射
// 是否适用（例如只对高价商品征收某税种）；为空则恒适用。
type TaxMapping struct {
	Category string `json:"category"`
	TaxTypes []string `json:"tax_types"`
	Rule     string `json:"rule,omitempty"`
}

// ItemFact 是规则评估的输入事实。
type ItemFact struct {
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// RuleEngine 评估一条适用性规则。表达式语法由基础设施层决定。
type RuleEngine interface {
	Evaluate(rule string, fact ItemFact) (bool, error)
}
