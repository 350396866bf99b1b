package ilerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cottand/typealg/frontend/ast"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	Syntax
	TypeTooComplex
	IllegalCall
	IllegalIndex
)

type IleError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

type Unclassified struct {
	From error
	ast.Positioner
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) Unwrap() error    { return e.From }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewSyntax is raised when a textual type cannot be parsed
type NewSyntax struct {
	ast.Positioner
	// Offset is the byte offset into the parsed text
	Offset int
	// Fragment is the text found at Offset
	Fragment string
	Message  string
	stack    []byte
}

func (e NewSyntax) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("%s at offset %d, near end of input", e.Message, e.Offset)
	}
	return fmt.Sprintf("%s at offset %d, near '%s'", e.Message, e.Offset, e.Fragment)
}
func (e NewSyntax) Code() ErrCode    { return Syntax }
func (e NewSyntax) getStack() []byte { return e.stack }
func (e NewSyntax) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewTypeTooComplex is raised when building a type exceeds the configured limits
type NewTypeTooComplex struct {
	ast.Positioner
	// Limit is the bound that was exceeded
	Limit int
	// What names the exhausted structure
	What  string
	stack []byte
}

func (e NewTypeTooComplex) Error() string {
	return fmt.Sprintf("type too complex: %s exceeded its limit of %d", e.What, e.Limit)
}
func (e NewTypeTooComplex) Code() ErrCode    { return TypeTooComplex }
func (e NewTypeTooComplex) getStack() []byte { return e.stack }
func (e NewTypeTooComplex) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type CallProblem int

const (
	BadArgument CallProblem = iota
	TooManyArguments
	TooFewArguments
)

// NewIllegalCall is raised when arguments do not fit the parameters of a callee
type NewIllegalCall struct {
	ast.Positioner
	Callee string
	// Args holds the described types of the arguments
	Args    []string
	Problem CallProblem
	// Arg is the 1-based argument at which matching failed
	Arg   int
	stack []byte
}

func (e NewIllegalCall) Error() string {
	switch e.Problem {
	case TooManyArguments:
		return fmt.Sprintf("too many arguments to '%s': got %d", e.Callee, len(e.Args))
	case TooFewArguments:
		return fmt.Sprintf("too few arguments to '%s': got %d", e.Callee, len(e.Args))
	}
	if e.Arg >= 1 && e.Arg <= len(e.Args) {
		return fmt.Sprintf("bad argument %d to '%s': got '%s'", e.Arg, e.Callee, e.Args[e.Arg-1])
	}
	return fmt.Sprintf("bad arguments to '%s': got (%s)", e.Callee, strings.Join(e.Args, ", "))
}
func (e NewIllegalCall) Code() ErrCode    { return IllegalCall }
func (e NewIllegalCall) getStack() []byte { return e.stack }
func (e NewIllegalCall) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewIllegalIndex is raised when a value of type Container cannot be indexed with Index
type NewIllegalIndex struct {
	ast.Positioner
	Container string
	Index     string
	Op        ast.IndexOp
	stack     []byte
}

func (e NewIllegalIndex) Error() string {
	if e.Op == ast.IndexArrow {
		return fmt.Sprintf("cannot use '->' on a value of type '%s'", e.Container)
	}
	return fmt.Sprintf("cannot index a value of type '%s' with '%s'", e.Container, e.Index)
}
func (e NewIllegalIndex) Code() ErrCode    { return IllegalIndex }
func (e NewIllegalIndex) getStack() []byte { return e.stack }
func (e NewIllegalIndex) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
