// internal/service/tax/infrastructure/rule/cel_rule_engine.go
package rule

import (
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"jetcart/internal/service/tax/domain"
)

// CELRuleEngineAdapter 是 domain.RuleEngine 的 CEL 实现。
// 这是一个典型的适配器：把第三方表达式引擎的 API 适配到
// 我们自己的领域接口。已编译的程序按表达式缓存。
type CELRuleEngineAdapter struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELRuleEngineAdapter 创建一个新的规则引擎适配器实例。
// 规则可以引用的变量: item.sku, item.quantity, item.unit_price。
func NewCELRuleEngineAdapter() (*CELRuleEngineAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}
	return &CELRuleEngineAdapter{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate 实现了 domain.RuleEngine 接口。空规则恒为真。
func (a *CELRuleEngineAdapter) Evaluate(ruleExpr string, fact domain.ItemFact) (bool, error) {
	if ruleExpr == "" {
		return true, nil
	}

	program, err := a.compile(ruleExpr)
	if err != nil {
		return false, err
	}

	out, _, err := program.Eval(map[string]interface{}{
		"item": map[string]interface{}{
			"sku":        fact.SKU,
			"quantity":   fact.Quantity,
			"unit_price": fact.UnitPrice,
		},
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate rule %q", ruleExpr)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("rule %q did not evaluate to a boolean", ruleExpr)
	}
	return result, nil
}

func (a *CELRuleEngineAdapter) compile(ruleExpr string) (cel.Program, error) {
	a.mu.RLock()
	program, ok := a.programs[ruleExpr]
	a.mu.RUnlock()
	if ok {
		return program, nil
	}

	ast, issues := a.env.Compile(ruleExpr)
	if issues != nil && issues.Err() != nil {
		// 规则定义本身可能存在语法错误
		return nil, errors.Wrapf(issues.Err(), "invalid rule %q", ruleExpr)
	}
	program, err := a.env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build program for rule %q", ruleExpr)
	}

	a.mu.Lock()
	a.programs[ruleExpr] = program
	a.mu.Unlock()
	return program, nil
}
