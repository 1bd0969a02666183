// Package golispx reads source text with golisp's reader and converts the
// result into sexp expressions.
package golispx

import (
	"fmt"
	"strconv"

	"github.com/steelseries/golisp"

	sexp "github.com/rphilander/sexp/core"
)

// Parse reads one expression.
func Parse(src string) (sexp.Expr, error) {
	d, err := golisp.Parse(src)
	if err != nil {
		return sexp.Expr{}, &sexp.EvalError{Kind: sexp.SyntaxError, Op: "golisp", Msg: err.Error()}
	}
	return Convert(d)
}

// ParseAll reads every top-level expression in src. It has the signature of
// sexp.Reader.
func ParseAll(src string) ([]sexp.Expr, error) {
	// The trailing newline keeps a final ; comment from swallowing the ')'.
	x, err := Parse("(" + src + "\n)")
	if err != nil {
		return nil, err
	}
	return x.List, nil
}

// Convert maps golisp data onto the expression model. #t/#f and the symbols
// true/false become Booleans; nil is the empty list.
func Convert(d *golisp.Data) (sexp.Expr, error) {
	switch {
	case golisp.NilP(d):
		return sexp.ListVal(), nil
	case golisp.BooleanP(d):
		return sexp.BoolVal(golisp.BooleanValue(d)), nil
	case golisp.IntegerP(d):
		return sexp.IntVal(int64(golisp.IntegerValue(d))), nil
	case golisp.FloatP(d):
		// golisp keeps floats as float32; widen through the shortest decimal
		// form so 0.1 reads the same as it does natively.
		s := strconv.FormatFloat(float64(golisp.FloatValue(d)), 'g', -1, 32)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return sexp.Expr{}, &sexp.EvalError{Kind: sexp.SyntaxError, Op: "golisp", Msg: err.Error()}
		}
		return sexp.FloatVal(f), nil
	case golisp.StringP(d):
		return sexp.StringVal(golisp.StringValue(d)), nil
	case golisp.SymbolP(d):
		switch name := golisp.StringValue(d); name {
		case "true":
			return sexp.BoolVal(true), nil
		case "false":
			return sexp.BoolVal(false), nil
		default:
			return sexp.SymbolVal(name), nil
		}
	case golisp.PairP(d):
		items := golisp.ToArray(d)
		elems := make([]sexp.Expr, len(items))
		for i, item := range items {
			x, err := Convert(item)
			if err != nil {
				return sexp.Expr{}, err
			}
			elems[i] = x
		}
		return sexp.ListVal(elems...), nil
	default:
		return sexp.Expr{}, &sexp.EvalError{
			Kind: sexp.SyntaxError,
			Op:   "golisp",
			Msg:  fmt.Sprintf("cannot convert %s", golisp.TypeName(golisp.TypeOf(d))),
		}
	}
}
