package sexp

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ArityMismatch ErrorKind = iota + 1
	UnboundSymbol
	TypeMismatch
	EmptyListAccess
	UnknownOperator
	DivisionByZero
	NumericOverflow
	DepthExceeded
	SyntaxError
)

func (k ErrorKind) String() string {
	switch k {
	case ArityMismatch:
		return "ArityMismatch"
	case UnboundSymbol:
		return "UnboundSymbol"
	case TypeMismatch:
		return "TypeMismatch"
	case EmptyListAccess:
		return "EmptyListAccess"
	case UnknownOperator:
		return "UnknownOperator"
	case DivisionByZero:
		return "DivisionByZero"
	case NumericOverflow:
		return "NumericOverflow"
	case DepthExceeded:
		return "DepthExceeded"
	case SyntaxError:
		return "SyntaxError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// EvalError is the error every evaluation failure is reported as.
// Op names the form or builtin that failed, if any.
type EvalError struct {
	Kind ErrorKind
	Op   string
	Msg  string
}

func (e *EvalError) Error() string {
	if e.Op != "" {
		return e.Op + ": " + e.Msg
	}
	return e.Msg
}

// Is matches any *EvalError of the same kind, so the sentinels below work
// with errors.Is.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	return ok && t.Kind == e.Kind
}

var (
	ErrArityMismatch   = &EvalError{Kind: ArityMismatch, Msg: "arity mismatch"}
	ErrUnboundSymbol   = &EvalError{Kind: UnboundSymbol, Msg: "unbound symbol"}
	ErrTypeMismatch    = &EvalError{Kind: TypeMismatch, Msg: "type mismatch"}
	ErrEmptyListAccess = &EvalError{Kind: EmptyListAccess, Msg: "empty list"}
	ErrUnknownOperator = &EvalError{Kind: UnknownOperator, Msg: "unknown operator"}
	ErrDivisionByZero  = &EvalError{Kind: DivisionByZero, Msg: "division by zero"}
	ErrNumericOverflow = &EvalError{Kind: NumericOverflow, Msg: "numeric overflow"}
	ErrDepthExceeded   = &EvalError{Kind: DepthExceeded, Msg: "recursion too deep"}
	ErrSyntax          = &EvalError{Kind: SyntaxError, Msg: "syntax error"}
)

// KindOf returns the kind of the first *EvalError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return 0
}

func arityError(op string, want string, got int) error {
	return &EvalError{Kind: ArityMismatch, Op: op, Msg: fmt.Sprintf("expected %s, got %d", want, got)}
}

func typeError(op string, want string, got Expr) error {
	return &EvalError{Kind: TypeMismatch, Op: op, Msg: fmt.Sprintf("expected %s, got %s", want, got.KindName())}
}

func unboundError(name string) error {
	return &EvalError{Kind: UnboundSymbol, Msg: "unbound symbol: " + name}
}

func syntaxError(format string, args ...any) error {
	return &EvalError{Kind: SyntaxError, Op: "parse", Msg: fmt.Sprintf(format, args...)}
}
