package slutils

import (
	"fmt"

	"github.com/benbjohnson/immutable"

	"github.com/Ehtycs/slutils/field"
	"github.com/Ehtycs/slutils/sym"
)

// Substitutions maps free symbol names to their field expression values.
// Every symbol reachable from the expression passed to Lizardify must have
// an entry.
type Substitutions map[string]*field.Expression

// RuleFunc translates a named function node. It receives the already
// translated arguments in argument order and returns the resulting field
// expression.
type RuleFunc func(args ...*field.Expression) (*field.Expression, error)

// defaultRules maps function name tags to their field constructors. The
// map is built once at load time and never mutated; merging overrides in
// Lizardify produces a fresh map and leaves the defaults untouched.
var defaultRules = func() *immutable.Map {
	m := immutable.NewMap(&ruleKeyHasher{})
	for name, rule := range map[string]RuleFunc{
		"log":   Monadic("log", field.Log10),
		"sin":   Monadic("sin", field.Sin),
		"cos":   Monadic("cos", field.Cos),
		"tan":   Monadic("tan", field.Tan),
		"asin":  Monadic("asin", field.Asin),
		"acos":  Monadic("acos", field.Acos),
		"atan":  Monadic("atan", field.Atan),
		"Abs":   Monadic("Abs", field.Abs),
		"atan2": Dyadic("atan2", field.Atan2),
	} {
		m = m.Set(name, rule)
	}
	return m
}()

// Monadic wraps a one-argument field constructor into a RuleFunc that
// rejects any other arity.
func Monadic(name string, fn func(*field.Expression) *field.Expression) RuleFunc {
	return func(args ...*field.Expression) (*field.Expression, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected 1 argument, got %d", name, len(args))
		}
		return fn(args[0]), nil
	}
}

// Dyadic wraps a two-argument field constructor into a RuleFunc that
// rejects any other arity.
func Dyadic(name string, fn func(a, b *field.Expression) *field.Expression) RuleFunc {
	return func(args ...*field.Expression) (*field.Expression, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
		}
		return fn(args[0], args[1]), nil
	}
}

// Lizardify converts a symbolic expression into a field expression,
// replacing every symbol by its entry in subs and every named function by
// its rewrite rule. Entries in overrides are merged over the default rule
// table; an override wins on name collision. Structural nodes (Add, Mul,
// Pow, Matrix, Symbol) are always handled structurally and cannot be
// shadowed by an override.
//
// Division arrives from the algebra system as multiplication by a power
// with exponent -1; such powers translate to a reciprocal rather than a
// power constructor, matching the engine's preferred x*(1/y) form.
//
// Translation is pure: it mutates neither the expression, subs, nor the
// rule table, and holds no state between calls.
func Lizardify(subs Substitutions, expr sym.Expr, overrides map[string]RuleFunc) (*field.Expression, error) {
	rules := defaultRules
	for name, rule := range overrides {
		rules = rules.Set(name, rule)
	}
	return lizardify(subs, expr, rules)
}

func lizardify(subs Substitutions, expr sym.Expr, rules *immutable.Map) (*field.Expression, error) {
	switch expr := expr.(type) {
	case *sym.Add:
		return fold(subs, expr.Terms, rules, field.Add)
	case *sym.Mul:
		return fold(subs, expr.Factors, rules, field.Mul)
	case *sym.Pow:
		base, err := lizardify(subs, expr.Base, rules)
		if err != nil {
			return nil, err
		}
		if n, ok := expr.Exp.(*sym.Number); ok && n.IsNegOne() {
			return field.Inv(base), nil
		}
		exp, err := lizardify(subs, expr.Exp, rules)
		if err != nil {
			return nil, err
		}
		return field.Pow(base, exp), nil
	case *sym.Matrix:
		elems := make([]*field.Expression, len(expr.Elems))
		for i, elem := range expr.Elems {
			v, err := lizardify(subs, elem, rules)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return field.NewMatrix(expr.Rows, expr.Cols, elems), nil
	case *sym.Symbol:
		v, ok := subs[expr.Name]
		if !ok {
			return nil, &SubstitutionError{Symbol: expr.Name}
		}
		return v, nil
	case *sym.Number:
		return field.NewScalar(expr.Float64()), nil
	case *sym.Call:
		rule, ok := rules.Get(expr.Name)
		if !ok {
			return nil, &UnsupportedNodeError{Tag: expr.Name, Node: expr.String()}
		}
		args := make([]*field.Expression, len(expr.Args))
		for i, arg := range expr.Args {
			v, err := lizardify(subs, arg, rules)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		out, err := rule.(RuleFunc)(args...)
		if err != nil {
			return nil, fmt.Errorf("slutils: rewrite rule %q: %w", expr.Name, err)
		}
		return out, nil
	default:
		// Anything else must coerce to a plain number.
		if n, ok := expr.(interface{ Float64() float64 }); ok {
			return field.NewScalar(n.Float64()), nil
		}
		return nil, &UnsupportedNodeError{Tag: sym.TypeName(expr), Node: expr.String()}
	}
}

// ruleKeyHasher hashes function name tags. Implements immutable.Hasher.
type ruleKeyHasher struct{}

// Hash returns a hash for key.
func (h *ruleKeyHasher) Hash(key interface{}) uint32 {
	var hash uint32
	for _, c := range key.(string) {
		hash = 31*hash + uint32(c)
	}
	return hash
}

// Equal returns true if a equals b.
func (h *ruleKeyHasher) Equal(a, b interface{}) bool {
	return a.(string) == b.(string)
}

// fold translates terms left to right and combines them pairwise with op.
func fold(subs Substitutions, terms []sym.Expr, rules *immutable.Map, op func(a, b *field.Expression) *field.Expression) (*field.Expression, error) {
	assert(len(terms) > 0, "fold: empty operand list")
	out, err := lizardify(subs, terms[0], rules)
	if err != nil {
		return nil, err
	}
	for _, term := range terms[1:] {
		rhs, err := lizardify(subs, term, rules)
		if err != nil {
			return nil, err
		}
		out = op(out, rhs)
	}
	return out, nil
}
