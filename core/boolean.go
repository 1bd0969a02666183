package sexp

// The boolean operators reduce every argument in order; there is no early
// exit once the result is known.

func (ev *Evaluator) evalAnd(args []Expr, env *Env) (Expr, error) {
	result := true
	for _, a := range args {
		b, err := ev.simplifyBool("and", a, env)
		if err != nil {
			return Expr{}, err
		}
		result = result && b
	}
	return BoolVal(result), nil
}

func (ev *Evaluator) evalOr(args []Expr, env *Env) (Expr, error) {
	result := false
	for _, a := range args {
		b, err := ev.simplifyBool("or", a, env)
		if err != nil {
			return Expr{}, err
		}
		result = result || b
	}
	return BoolVal(result), nil
}

func (ev *Evaluator) evalNot(args []Expr, env *Env) (Expr, error) {
	if len(args) != 1 {
		return Expr{}, arityError("not", "1 arg", len(args))
	}
	b, err := ev.simplifyBool("not", args[0], env)
	if err != nil {
		return Expr{}, err
	}
	return BoolVal(!b), nil
}

func (ev *Evaluator) simplifyBool(op string, x Expr, env *Env) (bool, error) {
	v, err := ev.SimplifyIn(x, env)
	if err != nil {
		return false, err
	}
	if v.Kind != ExprBool {
		return false, typeError(op, "Bool", v)
	}
	return v.Bool, nil
}
