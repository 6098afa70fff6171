package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLabelResolved is returned when a label is resolved a second time.
	ErrLabelResolved = errors.New("label already resolved")
	// ErrUnresolvedLabel is returned when fix-up meets a pending label.
	ErrUnresolvedLabel = errors.New("unresolved label")
)

// Pos is a location in the AST source, 1-based. The zero Pos is unknown.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) IsKnown() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsKnown() {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// CompileError is a diagnostic tied to a node of the input.
type CompileError struct {
	Pos     Pos
	Message string
}

func (e *CompileError) Error() string {
	if e.Pos.IsKnown() {
		return fmt.Sprintf("%s: error: %s", e.Pos, e.Message)
	}
	return "error: " + e.Message
}

// ErrorCollection accumulates diagnostics from one pass.
type ErrorCollection struct {
	errors []*CompileError
}

func (ec *ErrorCollection) Add(pos Pos, format string, args ...any) {
	ec.errors = append(ec.errors, &CompileError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (ec *ErrorCollection) HasErrors() bool {
	return len(ec.errors) > 0
}

func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

func (ec *ErrorCollection) Errors() []*CompileError {
	return ec.errors
}

func (ec *ErrorCollection) String() string {
	var lines []string
	for _, err := range ec.errors {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}

// Error makes a non-empty collection usable as an error value.
func (ec *ErrorCollection) Error() string {
	return ec.String()
}

// InternalError reports a broken invariant in the code generator, such as
// an AST kind that a lowering function cannot handle. It is never caused
// by a well-formed, scope-checked input.
type InternalError struct {
	Pos     Pos
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error at %s: %s", e.Pos, e.Message)
}

func internalFault(node *ASTNode, format string, args ...any) {
	var pos Pos
	if node != nil {
		pos = node.Pos
	}
	panic(&InternalError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// expectChildren faults unless node has between lo and hi children.
func expectChildren(node *ASTNode, lo, hi int) {
	n := len(node.Children)
	if n >= lo && n <= hi {
		return
	}
	if lo == hi {
		internalFault(node, "%s has %d children, want %d", node.Kind, n, lo)
	}
	internalFault(node, "%s has %d children, want %d to %d", node.Kind, n, lo, hi)
}
