package sexp

import "fmt"

// DefaultMaxDepth bounds nested SimplifyIn calls.
const DefaultMaxDepth = 10000

// Builtin is a function implemented in Go, called with reduced arguments.
type Builtin func(args []Expr) (Expr, error)

// Evaluator reduces expressions against a global frame. It is not safe for
// concurrent use.
type Evaluator struct {
	Global   *Env
	Builtins map[string]Builtin
	MaxDepth int // 0 disables the limit
	OnDefine func(name string, x Expr)
	depth    int
}

// NewEvaluator returns an evaluator over global with the default builtins.
// A nil global gets a fresh frame.
func NewEvaluator(global *Env) *Evaluator {
	if global == nil {
		global = NewEnv()
	}
	return &Evaluator{
		Global:   global,
		Builtins: DefaultBuiltins(),
		MaxDepth: DefaultMaxDepth,
	}
}

// Simplify reduces x in env with a default evaluator.
func Simplify(x Expr, env *Env) (Expr, error) {
	return NewEvaluator(env).Simplify(x)
}

func (ev *Evaluator) Simplify(x Expr) (Expr, error) {
	return ev.SimplifyIn(x, ev.Global)
}

// SimplifyIn reduces x to normal form in env.
func (ev *Evaluator) SimplifyIn(x Expr, env *Env) (Expr, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.MaxDepth > 0 && ev.depth > ev.MaxDepth {
		return Expr{}, &EvalError{Kind: DepthExceeded, Msg: fmt.Sprintf("recursion deeper than %d", ev.MaxDepth)}
	}

	switch x.Kind {
	case ExprSymbol:
		return ev.resolveSymbol(x.Str, env)
	case ExprList:
		if len(x.List) == 0 {
			return x, nil
		}
		return ev.simplifyList(x, env)
	default:
		return x, nil
	}
}

func (ev *Evaluator) resolveSymbol(name string, env *Env) (Expr, error) {
	b, ok := env.binding(name)
	if !ok {
		return Expr{}, unboundError(name)
	}
	if b.Reduced {
		return b.Expr.Clone(), nil
	}
	return ev.SimplifyIn(b.Expr, b.Env)
}

func (ev *Evaluator) simplifyList(x Expr, env *Env) (Expr, error) {
	head := x.List[0]
	args := x.List[1:]

	if head.Kind == ExprSymbol {
		switch head.Str {
		case "quote":
			return ev.evalQuote(args)
		case "define":
			return ev.evalDefine(args, env)
		case "car":
			return ev.evalCar(args, env)
		case "cdr":
			return ev.evalCdr(args, env)
		case "lambda":
			return ev.evalLambda(args, env)
		case "if":
			return ev.evalIf(args, env)
		case "and":
			return ev.evalAnd(args, env)
		case "or":
			return ev.evalOr(args, env)
		case "not":
			return ev.evalNot(args, env)
		}

		if fn, ok := ev.Builtins[head.Str]; ok {
			return ev.callBuiltin(fn, args, env)
		}
		if !env.Defined(head.Str) {
			return Expr{}, &EvalError{Kind: UnknownOperator, Msg: "unknown operator: " + head.Str}
		}
	}

	fnVal, err := ev.SimplifyIn(head, env)
	if err != nil {
		return Expr{}, err
	}
	if fnVal.Kind != ExprLambda {
		return Expr{}, &EvalError{Kind: UnknownOperator, Msg: fmt.Sprintf("cannot apply %s value %s", fnVal.KindName(), head.String())}
	}
	if len(args) != len(fnVal.Lambda.Params) {
		return Expr{}, arityError("lambda", plural(len(fnVal.Lambda.Params), "arg"), len(args))
	}
	vals, err := ev.simplifyAll(args, env)
	if err != nil {
		return Expr{}, err
	}
	return ev.Apply(fnVal.Lambda, vals)
}

// simplifyAll reduces each expression in order, stopping at the first error.
func (ev *Evaluator) simplifyAll(xs []Expr, env *Env) ([]Expr, error) {
	vals := make([]Expr, len(xs))
	for i, x := range xs {
		v, err := ev.SimplifyIn(x, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (ev *Evaluator) callBuiltin(fn Builtin, argExprs []Expr, env *Env) (Expr, error) {
	args, err := ev.simplifyAll(argExprs, env)
	if err != nil {
		return Expr{}, err
	}
	return fn(args)
}

// Apply calls fn with already reduced arguments. Each parameter is bound in
// a fresh child of the frame fn was built in; the frame is dropped on return.
func (ev *Evaluator) Apply(fn *LambdaDef, args []Expr) (Expr, error) {
	if len(args) != len(fn.Params) {
		return Expr{}, arityError("lambda", plural(len(fn.Params), "arg"), len(args))
	}
	parent := fn.Env
	if parent == nil {
		parent = ev.Global
	}
	frame := parent.NewChild()
	for i, p := range fn.Params {
		if p.Kind != ExprSymbol {
			return Expr{}, typeError("lambda", "Symbol parameter", p)
		}
		frame.BindValue(p.Str, args[i])
	}
	return ev.SimplifyIn(fn.Body, frame)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
