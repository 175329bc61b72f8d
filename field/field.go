// Package field implements the expression representation consumed by the
// finite element engine.
//
// An Expression is an opaque value built only through the constructors in
// this package: a scalar (plain number or named input field), a matrix of
// scalars, or a composition of those through the arithmetic operators and
// the entrywise functions. The package represents structure only; it does
// not evaluate.
package field

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression represents a field expression value of shape rows x cols.
// A scalar is the 1x1 case. Expressions are immutable.
type Expression struct {
	rows  int
	cols  int
	terms []term // row-major, len rows*cols
}

// Rows returns the number of rows of the expression.
func (e *Expression) Rows() int { return e.rows }

// Cols returns the number of columns of the expression.
func (e *Expression) Cols() int { return e.cols }

// IsScalar reports whether the expression has shape 1x1.
func (e *Expression) IsScalar() bool { return e.rows == 1 && e.cols == 1 }

// Equal reports whether two expressions have identical shape and structure.
func (e *Expression) Equal(other *Expression) bool {
	if other == nil || e.rows != other.rows || e.cols != other.cols {
		return false
	}
	for i := range e.terms {
		if !equalTerm(e.terms[i], other.terms[i]) {
			return false
		}
	}
	return true
}

// String returns the string representation of the expression.
func (e *Expression) String() string {
	if e.IsScalar() {
		return e.terms[0].render()
	}
	parts := make([]string, len(e.terms))
	for i, t := range e.terms {
		parts[i] = t.render()
	}
	return fmt.Sprintf("[%dx%d](%s)", e.rows, e.cols, strings.Join(parts, ", "))
}

// NewScalar returns the scalar expression holding the plain number v.
func NewScalar(v float64) *Expression {
	return scalar(constTerm{v: v})
}

// NewField returns the scalar expression referring to the named input field.
func NewField(name string) *Expression {
	assert(name != "", "field: empty field name")
	return scalar(fieldTerm{name: name})
}

// NewMatrix returns a rows x cols matrix expression from flat row-major
// scalar elements.
func NewMatrix(rows, cols int, elems []*Expression) *Expression {
	assert(rows > 0 && cols > 0, "matrix: invalid shape %dx%d", rows, cols)
	assert(len(elems) == rows*cols, "matrix: expected %d elements, got %d", rows*cols, len(elems))
	terms := make([]term, len(elems))
	for i, elem := range elems {
		assert(elem.IsScalar(), "matrix: element %d is %dx%d, want scalar", i, elem.rows, elem.cols)
		terms[i] = elem.terms[0]
	}
	return &Expression{rows: rows, cols: cols, terms: terms}
}

// Add returns the sum of a and b. Shapes must match; a scalar operand is
// broadcast over the other operand.
func Add(a, b *Expression) *Expression { return combine('+', a, b) }

// Mul returns the product of a and b, entrywise. Shapes must match; a
// scalar operand is broadcast over the other operand.
func Mul(a, b *Expression) *Expression { return combine('*', a, b) }

// Pow returns base raised to exp, entrywise over base. The exponent must
// be scalar.
func Pow(base, exp *Expression) *Expression {
	assert(exp.IsScalar(), "pow: exponent is %dx%d, want scalar", exp.rows, exp.cols)
	return entrywise(base, func(t term) term {
		return binaryTerm{op: '^', lhs: t, rhs: exp.terms[0]}
	})
}

// Inv returns the entrywise reciprocal of x. Note this is not a matrix
// inverse.
func Inv(x *Expression) *Expression {
	return entrywise(x, func(t term) term { return invTerm{x: t} })
}

// Entrywise transcendental functions.
func Sin(x *Expression) *Expression   { return call1("sin", x) }
func Cos(x *Expression) *Expression   { return call1("cos", x) }
func Tan(x *Expression) *Expression   { return call1("tan", x) }
func Asin(x *Expression) *Expression  { return call1("asin", x) }
func Acos(x *Expression) *Expression  { return call1("acos", x) }
func Atan(x *Expression) *Expression  { return call1("atan", x) }
func Abs(x *Expression) *Expression   { return call1("abs", x) }
func Log10(x *Expression) *Expression { return call1("log10", x) }

// Atan2 returns the two-argument arctangent of y and x. Both arguments
// must be scalar.
func Atan2(y, x *Expression) *Expression {
	assert(y.IsScalar(), "atan2: y is %dx%d, want scalar", y.rows, y.cols)
	assert(x.IsScalar(), "atan2: x is %dx%d, want scalar", x.rows, x.cols)
	return scalar(callTerm{name: "atan2", args: []term{y.terms[0], x.terms[0]}})
}

// term is one scalar entry of an expression.
type term interface {
	render() string
	term()
}

func (constTerm) term()  {}
func (fieldTerm) term()  {}
func (binaryTerm) term() {}
func (invTerm) term()    {}
func (callTerm) term()   {}

// constTerm is a plain numeric literal.
type constTerm struct {
	v float64
}

func (t constTerm) render() string { return strconv.FormatFloat(t.v, 'g', -1, 64) }

// fieldTerm refers to a named input field.
type fieldTerm struct {
	name string
}

func (t fieldTerm) render() string { return t.name }

// binaryTerm applies one of the infix operators '+', '*' or '^'.
type binaryTerm struct {
	op  byte
	lhs term
	rhs term
}

func (t binaryTerm) render() string {
	return fmt.Sprintf("(%s%c%s)", t.lhs.render(), t.op, t.rhs.render())
}

// invTerm is the reciprocal of its operand.
type invTerm struct {
	x term
}

func (t invTerm) render() string { return "1/" + wrap(t.x) }

// callTerm applies a named engine function.
type callTerm struct {
	name string
	args []term
}

func (t callTerm) render() string {
	parts := make([]string, len(t.args))
	for i, arg := range t.args {
		parts[i] = arg.render()
	}
	return fmt.Sprintf("%s(%s)", t.name, strings.Join(parts, ", "))
}

// wrap parenthesizes terms whose rendering is not already self-delimiting.
func wrap(t term) string {
	if _, ok := t.(invTerm); ok {
		return "(" + t.render() + ")"
	}
	return t.render()
}

func equalTerm(a, b term) bool {
	switch a := a.(type) {
	case constTerm:
		b, ok := b.(constTerm)
		return ok && a.v == b.v
	case fieldTerm:
		b, ok := b.(fieldTerm)
		return ok && a.name == b.name
	case binaryTerm:
		b, ok := b.(binaryTerm)
		return ok && a.op == b.op && equalTerm(a.lhs, b.lhs) && equalTerm(a.rhs, b.rhs)
	case invTerm:
		b, ok := b.(invTerm)
		return ok && equalTerm(a.x, b.x)
	case callTerm:
		b, ok := b.(callTerm)
		if !ok || a.name != b.name || len(a.args) != len(b.args) {
			return false
		}
		for i := range a.args {
			if !equalTerm(a.args[i], b.args[i]) {
				return false
			}
		}
		return true
	default:
		panic("unreachable")
	}
}

func scalar(t term) *Expression {
	return &Expression{rows: 1, cols: 1, terms: []term{t}}
}

// combine applies an infix operator entrywise, broadcasting a scalar
// operand over the other operand's shape.
func combine(op byte, a, b *Expression) *Expression {
	switch {
	case a.IsScalar() && !b.IsScalar():
		return entrywise(b, func(t term) term {
			return binaryTerm{op: op, lhs: a.terms[0], rhs: t}
		})
	case !a.IsScalar() && b.IsScalar():
		return entrywise(a, func(t term) term {
			return binaryTerm{op: op, lhs: t, rhs: b.terms[0]}
		})
	default:
		assert(a.rows == b.rows && a.cols == b.cols, "%c: shape mismatch: %dx%d != %dx%d", op, a.rows, a.cols, b.rows, b.cols)
		terms := make([]term, len(a.terms))
		for i := range a.terms {
			terms[i] = binaryTerm{op: op, lhs: a.terms[i], rhs: b.terms[i]}
		}
		return &Expression{rows: a.rows, cols: a.cols, terms: terms}
	}
}

// entrywise maps f over every entry of x, preserving shape.
func entrywise(x *Expression, f func(term) term) *Expression {
	terms := make([]term, len(x.terms))
	for i, t := range x.terms {
		terms[i] = f(t)
	}
	return &Expression{rows: x.rows, cols: x.cols, terms: terms}
}

func call1(name string, x *Expression) *Expression {
	return entrywise(x, func(t term) term {
		return callTerm{name: name, args: []term{t}}
	})
}

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
