package sexp

import (
	"strconv"

	"github.com/nukata/goarith"
)

// Arithmetic keeps Ints as Ints and switches to Float as soon as one operand
// is a Float. There is no coercion between strings and numbers.

func toNumber(op string, x Expr) (goarith.Number, error) {
	switch x.Kind {
	case ExprInt:
		return goarith.AsNumber(x.Int), nil
	case ExprFloat:
		return goarith.AsNumber(x.Float), nil
	default:
		return nil, typeError(op, "number", x)
	}
}

// fromNumber converts n back to an Expr of the kind the operands imply.
func fromNumber(op string, n goarith.Number, float bool) (Expr, error) {
	s := n.String()
	if float {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Expr{}, &EvalError{Kind: NumericOverflow, Op: op, Msg: "result out of range: " + s}
		}
		return FloatVal(f), nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Expr{}, &EvalError{Kind: NumericOverflow, Op: op, Msg: "integer result out of range: " + s}
	}
	return IntVal(i), nil
}

func anyFloat(args []Expr) bool {
	for _, a := range args {
		if a.Kind == ExprFloat {
			return true
		}
	}
	return false
}

// fold combines args left to right starting from acc.
func fold(op string, acc goarith.Number, args []Expr, float bool, f func(a, b goarith.Number) goarith.Number) (Expr, error) {
	for _, a := range args {
		n, err := toNumber(op, a)
		if err != nil {
			return Expr{}, err
		}
		acc = f(acc, n)
	}
	return fromNumber(op, acc, float)
}

func builtinAdd(args []Expr) (Expr, error) {
	return fold("+", goarith.AsNumber(int64(0)), args, anyFloat(args), func(a, b goarith.Number) goarith.Number {
		return a.Add(b)
	})
}

func builtinMul(args []Expr) (Expr, error) {
	return fold("*", goarith.AsNumber(int64(1)), args, anyFloat(args), func(a, b goarith.Number) goarith.Number {
		return a.Mul(b)
	})
}

// builtinSub: (- x) negates, (- x y z) subtracts left to right.
func builtinSub(args []Expr) (Expr, error) {
	if len(args) == 0 {
		return Expr{}, arityError("-", "at least 1 arg", 0)
	}
	sub := func(a, b goarith.Number) goarith.Number { return a.Sub(b) }
	if len(args) == 1 {
		return fold("-", goarith.AsNumber(int64(0)), args, anyFloat(args), sub)
	}
	first, err := toNumber("-", args[0])
	if err != nil {
		return Expr{}, err
	}
	return fold("-", first, args[1:], anyFloat(args), sub)
}

func builtinDiv(args []Expr) (Expr, error) {
	if len(args) != 2 {
		return Expr{}, arityError("/", "2 args", len(args))
	}
	a, b := args[0], args[1]
	if _, err := toNumber("/", a); err != nil {
		return Expr{}, err
	}
	if _, err := toNumber("/", b); err != nil {
		return Expr{}, err
	}
	if a.Kind == ExprInt && b.Kind == ExprInt {
		if b.Int == 0 {
			return Expr{}, &EvalError{Kind: DivisionByZero, Op: "/", Msg: "division by zero"}
		}
		if a.Int == -1<<63 && b.Int == -1 {
			return Expr{}, &EvalError{Kind: NumericOverflow, Op: "/", Msg: "integer result out of range"}
		}
		return IntVal(a.Int / b.Int), nil
	}
	fa, fb := asFloat(a), asFloat(b)
	if fb == 0 {
		return Expr{}, &EvalError{Kind: DivisionByZero, Op: "/", Msg: "division by zero"}
	}
	return FloatVal(fa / fb), nil
}

func builtinMod(args []Expr) (Expr, error) {
	if len(args) != 2 {
		return Expr{}, arityError("mod", "2 args", len(args))
	}
	for _, a := range args {
		if a.Kind != ExprInt {
			return Expr{}, typeError("mod", "Int", a)
		}
	}
	if args[1].Int == 0 {
		return Expr{}, &EvalError{Kind: DivisionByZero, Op: "mod", Msg: "division by zero"}
	}
	if args[1].Int == -1 {
		return IntVal(0), nil
	}
	return IntVal(args[0].Int % args[1].Int), nil
}

func asFloat(x Expr) float64 {
	if x.Kind == ExprInt {
		return float64(x.Int)
	}
	return x.Float
}

func compareNumbers(op string, args []Expr) (int, error) {
	if len(args) != 2 {
		return 0, arityError(op, "2 args", len(args))
	}
	a, err := toNumber(op, args[0])
	if err != nil {
		return 0, err
	}
	b, err := toNumber(op, args[1])
	if err != nil {
		return 0, err
	}
	return a.Cmp(b), nil
}

func comparison(op string, ok func(cmp int) bool) Builtin {
	return func(args []Expr) (Expr, error) {
		cmp, err := compareNumbers(op, args)
		if err != nil {
			return Expr{}, err
		}
		return BoolVal(ok(cmp)), nil
	}
}

// builtinNumEq: numbers compare by value across Int and Float, everything
// else structurally.
func builtinNumEq(args []Expr) (Expr, error) {
	if len(args) != 2 {
		return Expr{}, arityError("=", "2 args", len(args))
	}
	a, b := args[0], args[1]
	if isNumber(a) && isNumber(b) {
		cmp, err := compareNumbers("=", args)
		if err != nil {
			return Expr{}, err
		}
		return BoolVal(cmp == 0), nil
	}
	return BoolVal(Equal(a, b)), nil
}

func isNumber(x Expr) bool {
	return x.Kind == ExprInt || x.Kind == ExprFloat
}
