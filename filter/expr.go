// Package filter compiles expr-lang expressions that select Automater
// products, for example:
//
//	Available > 0 && not icontains(Name, "test") && Currency == "PLN"
//
// Besides the product fields the environment offers icontains, a case
// insensitive substring test; the built-in operators (contains, startsWith,
// matches, ...) and functions (lower, upper, ...) of expr are available too.
package filter

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/automater-sync/automater"
)

const defaultCacheSize = 32

// Filter is a compiled product filter. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// Compiler compiles expressions, reusing programs for repeated expressions
type Compiler struct {
	cache *lruCache[*Filter]
}

// NewCompiler creates a compiler caching up to size programs
func NewCompiler(size int) *Compiler {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Compiler{cache: newLRUCache[*Filter](size)}
}

var defaultCompiler = NewCompiler(defaultCacheSize)

// Compile compiles an expression with the shared compiler
func Compile(expression string) (*Filter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile parses and type checks an expression against the product
// environment. The result must be boolean.
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	if cached, ok := c.cache.Get(expression); ok {
		return cached, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(environment(automater.Product{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &Filter{expression: expression, program: program}
	c.cache.Put(expression, f)
	return f, nil
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against one product
func (f *Filter) Match(product automater.Product) (bool, error) {
	result, err := expr.Run(f.program, environment(product))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			ProductID:  product.ID.String(),
			Err:        err,
		}
	}
	return result.(bool), nil
}

// Apply keeps the products the filter matches. Products that fail to
// evaluate are excluded and their errors returned alongside.
func (f *Filter) Apply(products []automater.Product) ([]automater.Product, []error) {
	var (
		kept []automater.Product
		errs []error
	)
	for _, p := range products {
		ok, err := f.Match(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			kept = append(kept, p)
		}
	}
	return kept, errs
}

// environment exposes the product fields and helpers
func environment(p automater.Product) map[string]any {
	return map[string]any{
		"ID":         p.ID.String(),
		"Name":       p.Name,
		"Type":       p.Type,
		"Status":     p.Status,
		"Price":      p.Price,
		"Currency":   p.Currency,
		"Available":  p.AvailableCodes,
		"DatabaseID": p.DatabaseID.String(),

		"icontains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
	}
}
