// Package sym implements the symbolic expression trees consumed by the
// slutils translator.
//
// An expression is an immutable tree of Expr nodes. The structural node
// kinds (Add, Mul, Pow, Matrix, Symbol, Number) form a closed set;
// named-function application is open-ended through Call, whose Name acts
// as an extensible dispatch tag.
package sym

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Expr represents a node in a symbolic expression tree.
type Expr interface {
	fmt.Stringer
	expr()
}

func (*Add) expr()    {}
func (*Mul) expr()    {}
func (*Pow) expr()    {}
func (*Matrix) expr() {}
func (*Symbol) expr() {}
func (*Number) expr() {}
func (*Const) expr()  {}
func (*Call) expr()   {}

// TypeName returns the dispatch tag of the expression: the node kind name
// for structural nodes, the function name for Call nodes, and the constant
// name for Const nodes. A matrix-valued node always reports "Matrix".
func TypeName(expr Expr) string {
	switch expr := expr.(type) {
	case *Matrix:
		return "Matrix"
	case *Add:
		return "Add"
	case *Mul:
		return "Mul"
	case *Pow:
		return "Pow"
	case *Symbol:
		return "Symbol"
	case *Number:
		return "Number"
	case *Const:
		return expr.Name
	case *Call:
		return expr.Name
	default:
		panic("unreachable")
	}
}

// Add represents the sum of two or more terms.
type Add struct {
	Terms []Expr
}

// NewAdd returns a new instance of Add.
func NewAdd(terms ...Expr) *Add {
	assert(len(terms) >= 2, "add: at least two terms required, got %d", len(terms))
	return &Add{Terms: terms}
}

// String returns the string representation of the expression.
func (e *Add) String() string {
	parts := make([]string, len(e.Terms))
	for i, term := range e.Terms {
		parts[i] = term.String()
	}
	return strings.Join(parts, " + ")
}

// Mul represents the product of two or more factors.
type Mul struct {
	Factors []Expr
}

// NewMul returns a new instance of Mul.
func NewMul(factors ...Expr) *Mul {
	assert(len(factors) >= 2, "mul: at least two factors required, got %d", len(factors))
	return &Mul{Factors: factors}
}

// String returns the string representation of the expression.
func (e *Mul) String() string {
	parts := make([]string, len(e.Factors))
	for i, factor := range e.Factors {
		parts[i] = parenthesize(factor)
	}
	return strings.Join(parts, "*")
}

// Pow represents a base raised to an exponent. The two-operand arity is
// fixed by construction.
type Pow struct {
	Base Expr
	Exp  Expr
}

// NewPow returns a new instance of Pow.
func NewPow(base, exp Expr) *Pow {
	return &Pow{Base: base, Exp: exp}
}

// String returns the string representation of the expression.
func (e *Pow) String() string {
	return fmt.Sprintf("%s^%s", parenthesize(e.Base), parenthesize(e.Exp))
}

// Matrix represents a matrix-valued expression with elements stored in
// row-major order.
type Matrix struct {
	Rows  int
	Cols  int
	Elems []Expr
}

// NewMatrix returns a new instance of Matrix. The number of elements must
// equal rows*cols.
func NewMatrix(rows, cols int, elems ...Expr) *Matrix {
	assert(rows > 0 && cols > 0, "matrix: invalid shape %dx%d", rows, cols)
	assert(len(elems) == rows*cols, "matrix: expected %d elements, got %d", rows*cols, len(elems))
	return &Matrix{Rows: rows, Cols: cols, Elems: elems}
}

// At returns the element at row i, column j.
func (e *Matrix) At(i, j int) Expr {
	assert(i >= 0 && i < e.Rows && j >= 0 && j < e.Cols, "matrix: index (%d,%d) out of range for %dx%d", i, j, e.Rows, e.Cols)
	return e.Elems[i*e.Cols+j]
}

// String returns the string representation of the expression.
func (e *Matrix) String() string {
	rows := make([]string, e.Rows)
	for i := 0; i < e.Rows; i++ {
		parts := make([]string, e.Cols)
		for j := 0; j < e.Cols; j++ {
			parts[j] = e.At(i, j).String()
		}
		rows[i] = strings.Join(parts, ", ")
	}
	return "[" + strings.Join(rows, "; ") + "]"
}

// Symbol represents a free variable. Two symbols are equal iff their names
// are equal.
type Symbol struct {
	Name string
}

// NewSymbol returns a new instance of Symbol.
func NewSymbol(name string) *Symbol {
	assert(name != "", "symbol: empty name")
	return &Symbol{Name: name}
}

// String returns the name of the symbol.
func (e *Symbol) String() string { return e.Name }

// Number represents an exact rational literal.
type Number struct {
	val *big.Rat
}

// NewInt returns a Number holding the integer v.
func NewInt(v int64) *Number {
	return &Number{val: new(big.Rat).SetInt64(v)}
}

// NewFrac returns a Number holding the fraction p/q.
func NewFrac(p, q int64) *Number {
	assert(q != 0, "number: zero denominator")
	return &Number{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NewFloat returns a Number holding the exact rational value of f.
func NewFloat(f float64) *Number {
	assert(!math.IsInf(f, 0) && !math.IsNaN(f), "number: non-finite value %v", f)
	return &Number{val: new(big.Rat).SetFloat64(f)}
}

// Float64 returns the nearest floating-point value.
func (e *Number) Float64() float64 {
	f, _ := e.val.Float64()
	return f
}

// IsNegOne reports whether the number equals the constant -1.
func (e *Number) IsNegOne() bool {
	return e.val.Cmp(negOne) == 0
}

// Rat returns a copy of the underlying rational value.
func (e *Number) Rat() *big.Rat { return new(big.Rat).Set(e.val) }

// Equal reports whether two numbers hold the same rational value.
func (e *Number) Equal(other *Number) bool {
	return other != nil && e.val.Cmp(other.val) == 0
}

// String returns the string representation of the number.
func (e *Number) String() string {
	if e.val.IsInt() {
		return e.val.Num().String()
	}
	return e.val.RatString()
}

var negOne = new(big.Rat).SetInt64(-1)

// Const represents a named irrational constant such as Pi. It has no exact
// rational form but coerces to a floating-point value.
type Const struct {
	Name  string
	Value float64
}

// Well-known constants.
var (
	Pi = &Const{Name: "Pi", Value: math.Pi}
	E  = &Const{Name: "E", Value: math.E}
)

// Float64 returns the floating-point value of the constant.
func (e *Const) Float64() float64 { return e.Value }

// String returns the name of the constant.
func (e *Const) String() string { return e.Name }

// Call represents the application of a named function to one or more
// arguments.
type Call struct {
	Name string
	Args []Expr
}

// NewCall returns a new instance of Call.
func NewCall(name string, args ...Expr) *Call {
	assert(name != "", "call: empty function name")
	assert(len(args) >= 1, "call: %s: at least one argument required", name)
	return &Call{Name: name, Args: args}
}

// String returns the string representation of the expression.
func (e *Call) String() string {
	parts := make([]string, len(e.Args))
	for i, arg := range e.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(parts, ", "))
}

// Convenience constructors for the function names in the default rewrite
// table. "Abs" is capitalized to match the upstream algebra system's tag.
func Sin(x Expr) *Call      { return NewCall("sin", x) }
func Cos(x Expr) *Call      { return NewCall("cos", x) }
func Tan(x Expr) *Call      { return NewCall("tan", x) }
func Asin(x Expr) *Call     { return NewCall("asin", x) }
func Acos(x Expr) *Call     { return NewCall("acos", x) }
func Atan(x Expr) *Call     { return NewCall("atan", x) }
func Log(x Expr) *Call      { return NewCall("log", x) }
func Abs(x Expr) *Call      { return NewCall("Abs", x) }
func Atan2(y, x Expr) *Call { return NewCall("atan2", y, x) }

// parenthesize wraps compound expressions for unambiguous rendering.
func parenthesize(expr Expr) string {
	switch expr.(type) {
	case *Add, *Mul, *Pow:
		return "(" + expr.String() + ")"
	default:
		return expr.String()
	}
}

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
