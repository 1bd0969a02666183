package sexp

import (
	"fmt"
	"strconv"
	"strings"
)

type ExprKind int

const (
	ExprSymbol ExprKind = iota
	ExprBool
	ExprInt
	ExprFloat
	ExprString
	ExprLambda
	ExprList
)

// LambdaDef is a function value. Params are checked to be symbols when the
// lambda is applied, not when it is built.
type LambdaDef struct {
	Params []Expr
	Body   Expr
	Env    *Env // frame the lambda was built in; nil means the global frame
}

// Expr is either an atom (every kind but ExprList) or a list of expressions.
type Expr struct {
	Kind   ExprKind
	Str    string
	Bool   bool
	Int    int64
	Float  float64
	Lambda *LambdaDef
	List   []Expr
}

func SymbolVal(name string) Expr { return Expr{Kind: ExprSymbol, Str: name} }
func BoolVal(b bool) Expr        { return Expr{Kind: ExprBool, Bool: b} }
func IntVal(n int64) Expr        { return Expr{Kind: ExprInt, Int: n} }
func FloatVal(f float64) Expr    { return Expr{Kind: ExprFloat, Float: f} }
func StringVal(s string) Expr    { return Expr{Kind: ExprString, Str: s} }
func LambdaVal(fn *LambdaDef) Expr {
	return Expr{Kind: ExprLambda, Lambda: fn}
}
func ListVal(elems ...Expr) Expr {
	if elems == nil {
		elems = []Expr{}
	}
	return Expr{Kind: ExprList, List: elems}
}

func (x Expr) IsAtom() bool { return x.Kind != ExprList }

// IsSymbol reports whether x is the symbol with the given name.
func (x Expr) IsSymbol(name string) bool {
	return x.Kind == ExprSymbol && x.Str == name
}

func (x Expr) IsEmptyList() bool {
	return x.Kind == ExprList && len(x.List) == 0
}

// Clone returns a copy that shares no list storage with x.
func (x Expr) Clone() Expr {
	switch x.Kind {
	case ExprList:
		elems := make([]Expr, len(x.List))
		for i, e := range x.List {
			elems[i] = e.Clone()
		}
		return ListVal(elems...)
	case ExprLambda:
		params := make([]Expr, len(x.Lambda.Params))
		for i, p := range x.Lambda.Params {
			params[i] = p.Clone()
		}
		return LambdaVal(&LambdaDef{
			Params: params,
			Body:   x.Lambda.Body.Clone(),
			Env:    x.Lambda.Env,
		})
	default:
		return x
	}
}

func (x Expr) String() string {
	switch x.Kind {
	case ExprSymbol:
		return x.Str
	case ExprBool:
		if x.Bool {
			return "true"
		}
		return "false"
	case ExprInt:
		return strconv.FormatInt(x.Int, 10)
	case ExprFloat:
		s := strconv.FormatFloat(x.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		return s
	case ExprString:
		return strconv.Quote(x.Str)
	case ExprLambda:
		params := make([]string, len(x.Lambda.Params))
		for i, p := range x.Lambda.Params {
			params[i] = p.String()
		}
		return fmt.Sprintf("(lambda (%s) %s)", strings.Join(params, " "), x.Lambda.Body.String())
	case ExprList:
		parts := make([]string, len(x.List))
		for i, e := range x.List {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("<unknown:%d>", x.Kind)
	}
}

func (x Expr) KindName() string {
	switch x.Kind {
	case ExprSymbol:
		return "Symbol"
	case ExprBool:
		return "Bool"
	case ExprInt:
		return "Int"
	case ExprFloat:
		return "Float"
	case ExprString:
		return "String"
	case ExprLambda:
		return "Lambda"
	case ExprList:
		return "List"
	default:
		return "Unknown"
	}
}

// Equal compares two expressions structurally. Lambdas are equal when their
// params and bodies are; the captured frame is ignored.
func Equal(a, b Expr) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ExprSymbol, ExprString:
		return a.Str == b.Str
	case ExprBool:
		return a.Bool == b.Bool
	case ExprInt:
		return a.Int == b.Int
	case ExprFloat:
		return a.Float == b.Float
	case ExprLambda:
		if len(a.Lambda.Params) != len(b.Lambda.Params) {
			return false
		}
		for i := range a.Lambda.Params {
			if !Equal(a.Lambda.Params[i], b.Lambda.Params[i]) {
				return false
			}
		}
		return Equal(a.Lambda.Body, b.Lambda.Body)
	case ExprList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}
