// Package slutils converts symbolic expression trees into the field
// expression representation consumed by the finite element engine.
package slutils

import "fmt"

// SubstitutionError is returned when translation reaches a symbol that has
// no entry in the substitution map.
type SubstitutionError struct {
	Symbol string
}

// Error returns the string representation of the error.
func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("slutils: no substitution for symbol %q", e.Symbol)
}

// UnsupportedNodeError is returned when a node can be neither structurally
// translated, rewritten through the rule table, nor coerced to a number.
type UnsupportedNodeError struct {
	Tag  string // dispatch tag of the offending node
	Node string // string form of the offending node
}

// Error returns the string representation of the error.
func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("slutils: term %q of type %q cannot be converted to a field expression", e.Node, e.Tag)
}

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
