package sexp

// Special forms receive their arguments unevaluated and decide for
// themselves what to reduce.

// evalQuote: (quote x) returns a copy of x, unevaluated.
func (ev *Evaluator) evalQuote(args []Expr) (Expr, error) {
	if len(args) != 1 {
		return Expr{}, arityError("quote", "1 arg", len(args))
	}
	return args[0].Clone(), nil
}

// evalDefine: (define name x) binds a copy of x, unevaluated, and returns
// the name.
func (ev *Evaluator) evalDefine(args []Expr, env *Env) (Expr, error) {
	if len(args) != 2 {
		return Expr{}, arityError("define", "2 args", len(args))
	}
	name := args[0]
	if name.Kind != ExprSymbol {
		return Expr{}, typeError("define", "Symbol name", name)
	}
	body := args[1].Clone()
	env.Bind(name.Str, body)
	if env == ev.Global && ev.OnDefine != nil {
		ev.OnDefine(name.Str, body)
	}
	return name, nil
}

// evalCar: (car xs) returns the first element of the reduced list.
func (ev *Evaluator) evalCar(args []Expr, env *Env) (Expr, error) {
	if len(args) != 1 {
		return Expr{}, arityError("car", "1 arg", len(args))
	}
	v, err := ev.SimplifyIn(args[0], env)
	if err != nil {
		return Expr{}, err
	}
	if v.Kind != ExprList {
		return Expr{}, typeError("car", "List", v)
	}
	if len(v.List) == 0 {
		return Expr{}, &EvalError{Kind: EmptyListAccess, Op: "car", Msg: "empty list"}
	}
	return v.List[0].Clone(), nil
}

// evalCdr: (cdr xs) returns a new list of everything after the first
// element. The empty list and one-element lists give ().
func (ev *Evaluator) evalCdr(args []Expr, env *Env) (Expr, error) {
	if len(args) != 1 {
		return Expr{}, arityError("cdr", "1 arg", len(args))
	}
	v, err := ev.SimplifyIn(args[0], env)
	if err != nil {
		return Expr{}, err
	}
	if v.Kind != ExprList {
		return Expr{}, typeError("cdr", "List", v)
	}
	if len(v.List) <= 1 {
		return ListVal(), nil
	}
	rest := make([]Expr, len(v.List)-1)
	copy(rest, v.List[1:])
	return ListVal(rest...), nil
}

// evalLambda: (lambda params body). A single atom is a one-parameter list.
func (ev *Evaluator) evalLambda(args []Expr, env *Env) (Expr, error) {
	if len(args) != 2 {
		return Expr{}, arityError("lambda", "2 args", len(args))
	}
	var params []Expr
	if p := args[0]; p.Kind == ExprList {
		params = make([]Expr, len(p.List))
		for i, e := range p.List {
			params[i] = e.Clone()
		}
	} else {
		params = []Expr{p}
	}
	return LambdaVal(&LambdaDef{
		Params: params,
		Body:   args[1].Clone(),
		Env:    env,
	}), nil
}

// evalIf: (if test then else). Only the chosen branch is reduced.
func (ev *Evaluator) evalIf(args []Expr, env *Env) (Expr, error) {
	if len(args) != 3 {
		return Expr{}, arityError("if", "3 args (test then else)", len(args))
	}
	test, err := ev.SimplifyIn(args[0], env)
	if err != nil {
		return Expr{}, err
	}
	if test.Kind != ExprBool {
		return Expr{}, typeError("if", "Bool test", test)
	}
	if test.Bool {
		return ev.SimplifyIn(args[1], env)
	}
	return ev.SimplifyIn(args[2], env)
}
